package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
)

type authBody struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"new@example.com","password":"hunter22","name":"New Person"}`)
	requireStatus(t, rec, http.StatusCreated)
	reg := decode[authBody](t, rec)
	require.NotEmpty(t, reg.Token)
	assert.Equal(t, model.RoleClient, reg.User.Role, "self-registration always yields a client")
	assert.Equal(t, "NP", reg.User.AvatarInitials)

	// The fresh token works.
	rec = env.do(http.MethodGet, "/v1/me", reg.Token, "")
	requireStatus(t, rec, http.StatusOK)
	me := decode[model.User](t, rec)
	assert.Equal(t, "new@example.com", me.Email)

	// Logout revokes server-side; the same token is dead afterwards.
	rec = env.do(http.MethodPost, "/v1/auth/logout", reg.Token, "")
	requireStatus(t, rec, http.StatusNoContent)
	rec = env.do(http.MethodGet, "/v1/me", reg.Token, "")
	requireStatus(t, rec, http.StatusUnauthorized)

	// Login again with the credentials.
	rec = env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"NEW@example.com","password":"hunter22"}`)
	requireStatus(t, rec, http.StatusOK)
	login := decode[authBody](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.NotEqual(t, reg.Token, login.Token)
}

func TestRegisterValidation(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"not-an-email","password":"short","name":""}`)
	requireStatus(t, rec, http.StatusBadRequest)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "validation", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "name")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"client@example.com","password":"hunter22","name":"Copy Cat"}`)
	requireStatus(t, rec, http.StatusConflict)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newEnv(t)

	wrongPass := env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"client@example.com","password":"nope"}`)
	unknownEmail := env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"ghost@example.com","password":"nope"}`)

	requireStatus(t, wrongPass, http.StatusUnauthorized)
	requireStatus(t, unknownEmail, http.StatusUnauthorized)
	assert.Equal(t, wrongPass.Body.String(), unknownEmail.Body.String())
}

func TestUnauthenticatedRequests(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/v1/projects", "", "")
	requireStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(http.MethodGet, "/v1/projects", "bogus-token", "")
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestChangePassword(t *testing.T) {
	env := newEnv(t)

	// Wrong current password is refused.
	rec := env.do(http.MethodPost, "/v1/auth/change-password", env.clientTok,
		`{"currentPassword":"wrong","newPassword":"brand-new-1"}`)
	requireStatus(t, rec, http.StatusForbidden)

	rec = env.do(http.MethodPost, "/v1/auth/change-password", env.clientTok,
		`{"currentPassword":"password1","newPassword":"brand-new-1"}`)
	requireStatus(t, rec, http.StatusOK)

	// Old credential dead, new one live.
	rec = env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"client@example.com","password":"password1"}`)
	requireStatus(t, rec, http.StatusUnauthorized)
	rec = env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"client@example.com","password":"brand-new-1"}`)
	requireStatus(t, rec, http.StatusOK)
}

func TestForgotPasswordIsGeneric(t *testing.T) {
	env := newEnv(t)

	known := env.do(http.MethodPost, "/v1/auth/forgot-password", "",
		`{"email":"client@example.com"}`)
	unknown := env.do(http.MethodPost, "/v1/auth/forgot-password", "",
		`{"email":"nobody@example.com"}`)

	requireStatus(t, known, http.StatusOK)
	requireStatus(t, unknown, http.StatusOK)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", "")
	requireStatus(t, rec, http.StatusOK)
}

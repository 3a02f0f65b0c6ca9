package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	env := newEnv(t)

	for _, tok := range []string{env.clientTok, env.managerTok} {
		requireStatus(t, env.do(http.MethodGet, "/v1/admin/users", tok, ""), http.StatusForbidden)
	}
	requireStatus(t, env.do(http.MethodGet, "/v1/admin/users", env.adminTok, ""), http.StatusOK)
}

func TestAdminCreateUser(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/v1/admin/users", env.adminTok,
		`{"email":"pm@example.com","password":"hunter22","name":"Pat Manager","role":"manager"}`)
	requireStatus(t, rec, http.StatusCreated)
	u := decode[model.User](t, rec)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.Equal(t, "PM", u.AvatarInitials)

	// Unknown roles and malformed input are refused.
	rec = env.do(http.MethodPost, "/v1/admin/users", env.adminTok,
		`{"email":"x@example.com","password":"hunter22","name":"X","role":"owner"}`)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPost, "/v1/admin/users", env.adminTok,
		`{"email":"pm@example.com","password":"hunter22","name":"Dup","role":"client"}`)
	requireStatus(t, rec, http.StatusConflict)

	// The created account can log in.
	rec = env.do(http.MethodPost, "/v1/auth/login", "",
		`{"email":"pm@example.com","password":"hunter22"}`)
	requireStatus(t, rec, http.StatusOK)
}

func TestAdminUpdateUser(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPatch, fmt.Sprintf("/v1/admin/users/%d", env.client.ID), env.adminTok,
		`{"role":"manager","name":"Promoted Person"}`)
	requireStatus(t, rec, http.StatusOK)
	u := decode[model.User](t, rec)
	assert.Equal(t, model.RoleManager, u.Role)
	assert.Equal(t, "Promoted Person", u.Name)
	assert.Equal(t, "PP", u.AvatarInitials, "initials track the new name")

	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/admin/users/%d", env.client.ID), env.adminTok,
		`{"role":"emperor"}`)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPatch, "/v1/admin/users/9999", env.adminTok, `{"name":"Ghost"}`)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	// Deleting yourself is rejected.
	rec := env.do(http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", env.admin.ID), env.adminTok, "")
	requireStatus(t, rec, http.StatusForbidden)

	// The client's project survives the client's deletion.
	p := env.mkProject(t)
	rec = env.do(http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d", env.client.ID), env.adminTok, "")
	requireStatus(t, rec, http.StatusNoContent)

	_, err := env.store.GetUser(ctx, env.client.ID)
	assert.Error(t, err)
	got, err := env.store.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, env.client.ID, got.ClientID, "no referential cleanup on user delete")

	// The deleted user's session is dead.
	requireStatus(t, env.do(http.MethodGet, "/v1/me", env.clientTok, ""), http.StatusUnauthorized)

	rec = env.do(http.MethodDelete, "/v1/admin/users/9999", env.adminTok, "")
	requireStatus(t, rec, http.StatusNotFound)
}

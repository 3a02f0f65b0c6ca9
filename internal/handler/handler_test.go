package handler_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/config"
	"github.com/iliyamo/client-portal/internal/handler"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
	"github.com/iliyamo/client-portal/internal/router"
)

// testEnv hosts the whole HTTP surface over the memory store, with one
// logged-in user per role. The broker and Redis are absent, which the
// recorder and rate limiter tolerate by design.
type testEnv struct {
	e     *echo.Echo
	store repository.Store

	client  *model.User
	manager *model.User
	admin   *model.User

	clientTok  string
	managerTok string
	adminTok   string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	sessions := auth.NewSessionManager(store, time.Hour)
	engine := access.NewEngine(store)
	recorder := activity.NewRecorder(store, false)

	env := &testEnv{e: echo.New(), store: store}

	router.Register(env.e, router.Handlers{
		Auth:     handler.NewAuthHandler(store, sessions, recorder),
		Projects: handler.NewProjectHandler(store, engine, recorder),
		Tasks:    handler.NewTaskHandler(store, engine, recorder),
		Messages: handler.NewMessageHandler(store, engine, recorder),
		Finance:  handler.NewFinanceHandler(store, engine, recorder),
		Tickets:  handler.NewTicketHandler(store, engine, recorder),
		Admin:    handler.NewAdminHandler(store, recorder),
	}, sessions, config.RateLimitConfig{}, nil)

	mk := func(email, role, name string) (*model.User, string) {
		hash, err := auth.HashPassword("password1")
		require.NoError(t, err)
		u := &model.User{Email: email, PasswordHash: hash, Role: role, Name: name,
			AvatarInitials: model.Initials(name)}
		require.NoError(t, store.CreateUser(ctx, u))
		tok, err := sessions.Issue(ctx, u.ID)
		require.NoError(t, err)
		return u, tok
	}
	env.client, env.clientTok = mk("client@example.com", model.RoleClient, "Cleo Client")
	env.manager, env.managerTok = mk("manager@example.com", model.RoleManager, "Mona Manager")
	env.admin, env.adminTok = mk("admin@example.com", model.RoleAdmin, "Ada Admin")
	return env
}

// do performs a request against the in-memory server. body is raw JSON
// or empty.
func (env *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// mkProject creates a project owned by env.client and managed by
// env.manager, straight through the store.
func (env *testEnv) mkProject(t *testing.T) *model.Project {
	t.Helper()
	p := &model.Project{Name: "Website Redesign", ClientID: env.client.ID, ManagerID: &env.manager.ID}
	require.NoError(t, env.store.CreateProject(context.Background(), p))
	return p
}

func (env *testEnv) activityCount(t *testing.T) int {
	t.Helper()
	acts, err := env.store.ListActivities(context.Background(), 0)
	require.NoError(t, err)
	return len(acts)
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}

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

func TestCreateTaskRequiresOwnedProject(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, "/v1/tasks", env.clientTok,
		fmt.Sprintf(`{"title":"Wireframes","projectId":%d}`, p.ID))
	requireStatus(t, rec, http.StatusCreated)
	task := decode[model.Task](t, rec)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, env.client.ID, task.CreatedByID)

	// A foreign project yields forbidden, a missing one not found.
	foreign := &model.Project{Name: "Foreign", ClientID: 999}
	require.NoError(t, env.store.CreateProject(context.Background(), foreign))
	rec = env.do(http.MethodPost, "/v1/tasks", env.clientTok,
		fmt.Sprintf(`{"title":"Nope","projectId":%d}`, foreign.ID))
	requireStatus(t, rec, http.StatusForbidden)

	rec = env.do(http.MethodPost, "/v1/tasks", env.clientTok,
		`{"title":"Nope","projectId":4242}`)
	requireStatus(t, rec, http.StatusNotFound)

	rec = env.do(http.MethodPost, "/v1/tasks", env.clientTok,
		fmt.Sprintf(`{"title":"","projectId":%d}`, p.ID))
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateTaskStatus(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, "/v1/tasks", env.managerTok,
		fmt.Sprintf(`{"title":"Deploy","projectId":%d,"priority":"high"}`, p.ID))
	requireStatus(t, rec, http.StatusCreated)
	task := decode[model.Task](t, rec)

	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/tasks/%d", task.ID), env.managerTok,
		`{"status":"in_progress"}`)
	requireStatus(t, rec, http.StatusOK)
	got := decode[model.Task](t, rec)
	assert.Equal(t, model.TaskInProgress, got.Status)
	assert.Equal(t, model.PriorityHigh, got.Priority)

	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/tasks/%d", task.ID), env.managerTok,
		`{"status":"someday"}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestCommentBumpsCountAndRecordsOneActivity(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, "/v1/tasks", env.clientTok,
		fmt.Sprintf(`{"title":"Review copy","projectId":%d}`, p.ID))
	requireStatus(t, rec, http.StatusCreated)
	task := decode[model.Task](t, rec)

	before := env.activityCount(t)

	rec = env.do(http.MethodPost, fmt.Sprintf("/v1/tasks/%d/comments", task.ID), env.managerTok,
		`{"content":"Looks good"}`)
	requireStatus(t, rec, http.StatusCreated)
	cm := decode[model.TaskComment](t, rec)
	assert.Equal(t, env.manager.ID, cm.UserID)

	// Exactly one feed entry per comment.
	assert.Equal(t, before+1, env.activityCount(t))

	got := decode[model.Task](t, env.do(http.MethodGet, fmt.Sprintf("/v1/tasks/%d", task.ID), env.clientTok, ""))
	assert.Equal(t, 1, got.CommentCount)

	comments := decode[[]model.TaskComment](t,
		env.do(http.MethodGet, fmt.Sprintf("/v1/tasks/%d/comments", task.ID), env.clientTok, ""))
	require.Len(t, comments, 1)
	assert.Equal(t, "Looks good", comments[0].Content)
}

func TestTaskAccessIsTransitive(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	task := &model.Task{Title: "Hidden", ProjectID: p.ID, CreatedByID: env.client.ID}
	require.NoError(t, env.store.CreateTask(context.Background(), task))

	rec := env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"outsider@example.com","password":"hunter22","name":"Out Sider"}`)
	requireStatus(t, rec, http.StatusCreated)
	outsider := decode[authBody](t, rec)

	requireStatus(t, env.do(http.MethodGet, fmt.Sprintf("/v1/tasks/%d", task.ID), outsider.Token, ""), http.StatusForbidden)
	requireStatus(t, env.do(http.MethodGet, fmt.Sprintf("/v1/tasks/%d", task.ID), env.adminTok, ""), http.StatusOK)
	requireStatus(t, env.do(http.MethodGet, "/v1/tasks/9999", env.clientTok, ""), http.StatusNotFound)
}

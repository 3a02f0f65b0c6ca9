package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
)

func TestCreateProjectPerRole(t *testing.T) {
	env := newEnv(t)

	// A client creates for themselves no matter what clientId says.
	rec := env.do(http.MethodPost, "/v1/projects", env.clientTok,
		fmt.Sprintf(`{"name":"Mine","clientId":%d}`, env.admin.ID))
	requireStatus(t, rec, http.StatusCreated)
	p := decode[model.Project](t, rec)
	assert.Equal(t, env.client.ID, p.ClientID)
	assert.Equal(t, model.ProjectPlanning, p.Status)

	// A manager must name a client and becomes the manager.
	rec = env.do(http.MethodPost, "/v1/projects", env.managerTok, `{"name":"Managed"}`)
	requireStatus(t, rec, http.StatusBadRequest)
	rec = env.do(http.MethodPost, "/v1/projects", env.managerTok,
		fmt.Sprintf(`{"name":"Managed","clientId":%d}`, env.client.ID))
	requireStatus(t, rec, http.StatusCreated)
	mp := decode[model.Project](t, rec)
	require.NotNil(t, mp.ManagerID)
	assert.Equal(t, env.manager.ID, *mp.ManagerID)

	// An admin sets both sides freely.
	rec = env.do(http.MethodPost, "/v1/projects", env.adminTok,
		fmt.Sprintf(`{"name":"Assigned","clientId":%d,"managerId":%d}`, env.client.ID, env.manager.ID))
	requireStatus(t, rec, http.StatusCreated)
}

func TestListProjectsScoped(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	// A foreign project neither client nor manager should see.
	rec := env.do(http.MethodPost, "/v1/projects", env.adminTok, `{"name":"Other","clientId":999}`)
	requireStatus(t, rec, http.StatusCreated)

	clientList := decode[[]model.Project](t, env.do(http.MethodGet, "/v1/projects", env.clientTok, ""))
	require.Len(t, clientList, 1)
	assert.Equal(t, p.ID, clientList[0].ID)

	managerList := decode[[]model.Project](t, env.do(http.MethodGet, "/v1/projects", env.managerTok, ""))
	require.Len(t, managerList, 1)

	adminList := decode[[]model.Project](t, env.do(http.MethodGet, "/v1/projects", env.adminTok, ""))
	assert.Len(t, adminList, 2)
}

func TestGetProjectForbiddenVsNotFound(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	// Another client: the project exists but is not theirs.
	rec := env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"intruder@example.com","password":"hunter22","name":"In Truder"}`)
	requireStatus(t, rec, http.StatusCreated)
	intruder := decode[authBody](t, rec)

	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d", p.ID), intruder.Token, "")
	requireStatus(t, rec, http.StatusForbidden)

	// A missing id reads as not found, even for the owner.
	rec = env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d", p.ID+1000), env.clientTok, "")
	requireStatus(t, rec, http.StatusNotFound)

	// The owner and the assigned manager both pass.
	requireStatus(t, env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d", p.ID), env.clientTok, ""), http.StatusOK)
	requireStatus(t, env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d", p.ID), env.managerTok, ""), http.StatusOK)
}

func TestUpdateProject(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPatch, fmt.Sprintf("/v1/projects/%d", p.ID), env.managerTok,
		`{"status":"active","progress":40}`)
	requireStatus(t, rec, http.StatusOK)
	got := decode[model.Project](t, rec)
	assert.Equal(t, model.ProjectActive, got.Status)
	assert.Equal(t, 40, got.Progress)

	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/projects/%d", p.ID), env.managerTok,
		`{"progress":140}`)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(http.MethodPatch, fmt.Sprintf("/v1/projects/%d", p.ID), env.managerTok,
		`{"status":"galactic"}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestPhasesEndpoint(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	for i, name := range []string{"Build", "Design"} {
		rec := env.do(http.MethodPost, fmt.Sprintf("/v1/projects/%d/phases", p.ID), env.managerTok,
			fmt.Sprintf(`{"name":%q,"sortOrder":%d}`, name, 2-i))
		requireStatus(t, rec, http.StatusCreated)
	}

	phases := decode[[]model.ProjectPhase](t,
		env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d/phases", p.ID), env.clientTok, ""))
	require.Len(t, phases, 2)
	assert.Equal(t, "Design", phases[0].Name, "phases come back in sort order")
	assert.Equal(t, "Build", phases[1].Name)
}

func TestFilesEndpoint(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	rec := env.do(http.MethodPost, fmt.Sprintf("/v1/projects/%d/files", p.ID), env.clientTok,
		`{"name":"brief.pdf","path":"uploads/brief.pdf","size":2048}`)
	requireStatus(t, rec, http.StatusCreated)
	f := decode[model.ProjectFile](t, rec)
	assert.Equal(t, env.client.ID, f.UploadedByID)

	files := decode[[]model.ProjectFile](t,
		env.do(http.MethodGet, fmt.Sprintf("/v1/projects/%d/files", p.ID), env.managerTok, ""))
	assert.Len(t, files, 1)

	rec = env.do(http.MethodPost, fmt.Sprintf("/v1/projects/%d/files", p.ID), env.clientTok,
		`{"name":"","path":""}`)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestActivityFeedScoped(t *testing.T) {
	env := newEnv(t)
	p := env.mkProject(t)

	// Mutations through the API generate feed entries.
	rec := env.do(http.MethodPatch, fmt.Sprintf("/v1/projects/%d", p.ID), env.managerTok,
		`{"status":"active"}`)
	requireStatus(t, rec, http.StatusOK)

	feed := decode[[]model.Activity](t, env.do(http.MethodGet, "/v1/activities", env.clientTok, ""))
	require.Len(t, feed, 1)
	assert.Equal(t, model.ActionStatusChanged, feed[0].ActionType)
	assert.Equal(t, "project", feed[0].ResourceType)

	// A client with no projects sees an empty feed.
	rec = env.do(http.MethodPost, "/v1/auth/register", "",
		`{"email":"empty@example.com","password":"hunter22","name":"Em Ty"}`)
	requireStatus(t, rec, http.StatusCreated)
	other := decode[authBody](t, rec)
	empty := decode[[]model.Activity](t, env.do(http.MethodGet, "/v1/activities", other.Token, ""))
	assert.Empty(t, empty)
}

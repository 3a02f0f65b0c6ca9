package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// ProjectHandler serves projects and their child collections: phases,
// files, and the per-project task, message and activity lists.
type ProjectHandler struct {
	Store    repository.Store
	Access   *access.Engine
	Recorder *activity.Recorder
}

func NewProjectHandler(store repository.Store, eng *access.Engine, rec *activity.Recorder) *ProjectHandler {
	return &ProjectHandler{Store: store, Access: eng, Recorder: rec}
}

// List returns the caller's visible projects: owned for clients,
// managed for managers, all for admins.
func (h *ProjectHandler) List(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	projects, err := h.Access.OwnedProjects(ctx, caller)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

type createProjectReq struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Progress  int        `json:"progress"`
	ClientID  uint64     `json:"clientId"`
	ManagerID *uint64    `json:"managerId"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func validProjectStatus(s string) bool {
	switch s {
	case model.ProjectPlanning, model.ProjectActive, model.ProjectOnHold, model.ProjectCompleted:
		return true
	}
	return false
}

// Create makes a project. A client always creates for themselves; a
// manager becomes the assigned manager of whatever they create; an
// admin may set both sides freely.
func (h *ProjectHandler) Create(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req createProjectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)

	fields := FieldErrors{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.Status != "" && !validProjectStatus(req.Status) {
		fields["status"] = "unknown status"
	}

	p := &model.Project{
		Name:      req.Name,
		Status:    req.Status,
		Progress:  req.Progress,
		ClientID:  req.ClientID,
		ManagerID: req.ManagerID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	switch caller.Role {
	case model.RoleClient:
		p.ClientID = caller.ID
	case model.RoleManager:
		id := caller.ID
		p.ManagerID = &id
		if p.ClientID == 0 {
			fields["clientId"] = "required"
		}
	case model.RoleAdmin:
		if p.ClientID == 0 {
			fields["clientId"] = "required"
		}
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Store.CreateProject(ctx, p); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "project",
		ResourceID:   p.ID,
		ProjectID:    &p.ID,
		Description:  "created project " + p.Name,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Get returns a single project after the ownership gate.
func (h *ProjectHandler) Get(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Access.AuthorizeProject(ctx, caller, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type updateProjectReq struct {
	Name      *string    `json:"name"`
	Status    *string    `json:"status"`
	Progress  *int       `json:"progress"`
	ManagerID *uint64    `json:"managerId"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// Update merges a partial update into an owned project.
func (h *ProjectHandler) Update(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req updateProjectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "cannot be empty"
	}
	if req.Status != nil && !validProjectStatus(*req.Status) {
		fields["status"] = "unknown status"
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		fields["progress"] = "must be between 0 and 100"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	p, err := h.Store.UpdateProject(ctx, id, repository.ProjectUpdate{
		Name:      req.Name,
		Status:    req.Status,
		Progress:  req.Progress,
		ManagerID: req.ManagerID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return mapError(c, err)
	}
	action := model.ActionUpdated
	if req.Status != nil {
		action = model.ActionStatusChanged
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   action,
		ResourceType: "project",
		ResourceID:   p.ID,
		ProjectID:    &p.ID,
		Description:  "updated project " + p.Name,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListPhases returns the project's phases ordered by sort order.
func (h *ProjectHandler) ListPhases(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	phases, err := h.Store.ListProjectPhases(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, phases)
}

type createPhaseReq struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	SortOrder int        `json:"sortOrder"`
	Deadline  *time.Time `json:"deadline"`
}

// CreatePhase adds a phase to an owned project.
func (h *ProjectHandler) CreatePhase(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req createPhaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, FieldErrors{"name": "required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	ph := &model.ProjectPhase{
		ProjectID: id,
		Name:      strings.TrimSpace(req.Name),
		Status:    req.Status,
		SortOrder: req.SortOrder,
		Deadline:  req.Deadline,
	}
	if err := h.Store.CreateProjectPhase(ctx, ph); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "project_phase",
		ResourceID:   ph.ID,
		ProjectID:    &id,
		Description:  "added phase " + ph.Name,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, ph)
}

// ListFiles returns the project's file metadata.
func (h *ProjectHandler) ListFiles(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	files, err := h.Store.ListProjectFiles(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, files)
}

type createFileReq struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// CreateFile records file metadata against an owned project. Content
// upload and storage happen elsewhere.
func (h *ProjectHandler) CreateFile(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req createFileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	if strings.TrimSpace(req.Path) == "" {
		fields["path"] = "required"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	f := &model.ProjectFile{
		ProjectID:    id,
		Name:         strings.TrimSpace(req.Name),
		Path:         strings.TrimSpace(req.Path),
		Size:         req.Size,
		UploadedByID: caller.ID,
	}
	if err := h.Store.CreateProjectFile(ctx, f); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "project_file",
		ResourceID:   f.ID,
		ProjectID:    &id,
		Description:  "uploaded file " + f.Name,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

// ListTasks returns the project's tasks.
func (h *ProjectHandler) ListTasks(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	tasks, err := h.Store.ListTasksByProject(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// ListMessages returns the project-scoped conversation.
func (h *ProjectHandler) ListMessages(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	msgs, err := h.Store.ListMessagesByProject(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// ListActivities returns the project's audit feed, newest first.
func (h *ProjectHandler) ListActivities(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	acts, err := h.Store.ListActivitiesByProjects(ctx, []uint64{id}, 100)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, acts)
}

// Feed returns the caller's cross-project activity feed: the owned
// project set is resolved once, then activities are filtered by
// membership.
func (h *ProjectHandler) Feed(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	scope, err := h.Access.ProjectScope(ctx, caller)
	if err != nil {
		return mapError(c, err)
	}
	var acts []*model.Activity
	if scope.All {
		acts, err = h.Store.ListActivities(ctx, 100)
	} else {
		acts, err = h.Store.ListActivitiesByProjects(ctx, scope.ProjectIDs(), 100)
	}
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, acts)
}

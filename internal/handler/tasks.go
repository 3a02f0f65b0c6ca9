package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// TaskHandler serves tasks and their comments. Authorization always
// resolves through the parent project.
type TaskHandler struct {
	Store    repository.Store
	Access   *access.Engine
	Recorder *activity.Recorder
}

func NewTaskHandler(store repository.Store, eng *access.Engine, rec *activity.Recorder) *TaskHandler {
	return &TaskHandler{Store: store, Access: eng, Recorder: rec}
}

func validTaskStatus(s string) bool {
	switch s {
	case model.TaskTodo, model.TaskInProgress, model.TaskReview, model.TaskDone:
		return true
	}
	return false
}

func validPriority(s string) bool {
	switch s {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent:
		return true
	}
	return false
}

type createTaskReq struct {
	Title        string  `json:"title"`
	ProjectID    uint64  `json:"projectId"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	AssignedToID *uint64 `json:"assignedToId"`
}

// Create adds a task to a project the caller owns.
func (h *TaskHandler) Create(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "required"
	}
	if req.ProjectID == 0 {
		fields["projectId"] = "required"
	}
	if req.Status != "" && !validTaskStatus(req.Status) {
		fields["status"] = "unknown status"
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		fields["priority"] = "unknown priority"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Access.AuthorizeProject(ctx, caller, req.ProjectID); err != nil {
		return mapError(c, err)
	}
	t := &model.Task{
		Title:        strings.TrimSpace(req.Title),
		Status:       req.Status,
		Priority:     req.Priority,
		ProjectID:    req.ProjectID,
		CreatedByID:  caller.ID,
		AssignedToID: req.AssignedToID,
	}
	if err := h.Store.CreateTask(ctx, t); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "task",
		ResourceID:   t.ID,
		ProjectID:    &t.ProjectID,
		Description:  "created task " + t.Title,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Get returns one task after the transitive ownership gate.
func (h *TaskHandler) Get(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, _, err := h.Access.AuthorizeTask(ctx, caller, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

type updateTaskReq struct {
	Title        *string `json:"title"`
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssignedToID *uint64 `json:"assignedToId"`
}

// Update merges a partial task update.
func (h *TaskHandler) Update(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "cannot be empty"
	}
	if req.Status != nil && !validTaskStatus(*req.Status) {
		fields["status"] = "unknown status"
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		fields["priority"] = "unknown priority"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	_, p, err := h.Access.AuthorizeTask(ctx, caller, id)
	if err != nil {
		return mapError(c, err)
	}
	t, err := h.Store.UpdateTask(ctx, id, repository.TaskUpdate{
		Title:        req.Title,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID,
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
		ResourceType: "task",
		ResourceID:   t.ID,
		ProjectID:    &p.ID,
		Description:  "updated task " + t.Title,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// ListComments returns a task's comments, oldest first.
func (h *TaskHandler) ListComments(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, _, err := h.Access.AuthorizeTask(ctx, caller, id); err != nil {
		return mapError(c, err)
	}
	comments, err := h.Store.ListTaskComments(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

type createCommentReq struct {
	Content string `json:"content"`
}

// CreateComment appends a comment; the store bumps the parent task's
// counter atomically and exactly one activity entry is recorded.
func (h *TaskHandler) CreateComment(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return badRequest(c, FieldErrors{"content": "required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, p, err := h.Access.AuthorizeTask(ctx, caller, id)
	if err != nil {
		return mapError(c, err)
	}
	cm := &model.TaskComment{
		TaskID:  t.ID,
		UserID:  caller.ID,
		Content: req.Content,
	}
	if err := h.Store.CreateTaskComment(ctx, cm); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCommented,
		ResourceType: "task_comment",
		ResourceID:   cm.ID,
		ProjectID:    &p.ID,
		Description:  "commented on task " + t.Title,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

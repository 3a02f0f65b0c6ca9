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

// TicketHandler serves support tickets. Clients see their own;
// managers and admins see all.
type TicketHandler struct {
	Store    repository.Store
	Access   *access.Engine
	Recorder *activity.Recorder
}

func NewTicketHandler(store repository.Store, eng *access.Engine, rec *activity.Recorder) *TicketHandler {
	return &TicketHandler{Store: store, Access: eng, Recorder: rec}
}

// List returns the caller's visible tickets.
func (h *TicketHandler) List(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()
	if access.IsStaff(caller) {
		tickets, err := h.Store.ListSupportTickets(ctx)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(http.StatusOK, tickets)
	}
	tickets, err := h.Store.ListSupportTicketsByClient(ctx, caller.ID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

type createTicketReq struct {
	ClientID  uint64  `json:"clientId"`
	ProjectID *uint64 `json:"projectId"`
	Subject   string  `json:"subject"`
	Priority  string  `json:"priority"`
}

// Create opens a ticket. A client's ticket is always their own; staff
// must name the client.
func (h *TicketHandler) Create(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "required"
	}
	if req.Priority != "" && !validPriority(req.Priority) {
		fields["priority"] = "unknown priority"
	}
	if caller.Role == model.RoleClient {
		req.ClientID = caller.ID
	} else if req.ClientID == 0 {
		fields["clientId"] = "required"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if req.ProjectID != nil {
		if _, err := h.Access.AuthorizeProject(ctx, caller, *req.ProjectID); err != nil {
			return mapError(c, err)
		}
	}
	t := &model.SupportTicket{
		ClientID:  req.ClientID,
		ProjectID: req.ProjectID,
		Subject:   strings.TrimSpace(req.Subject),
		Priority:  req.Priority,
	}
	if err := h.Store.CreateSupportTicket(ctx, t); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "support_ticket",
		ResourceID:   t.ID,
		ProjectID:    t.ProjectID,
		Description:  "opened ticket " + t.Subject,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

type updateTicketReq struct {
	Status       *string `json:"status"`
	Priority     *string `json:"priority"`
	AssignedToID *uint64 `json:"assignedToId"`
}

// ticketTransitionOK enforces the one-way lifecycle
// open -> in_progress -> closed.
func ticketTransitionOK(from, to string) bool {
	switch from {
	case model.TicketOpen:
		return to == model.TicketInProgress || to == model.TicketClosed
	case model.TicketInProgress:
		return to == model.TicketClosed
	}
	return false
}

// Update mutates a ticket; staff only. Closing a ticket stamps
// ClosedAt; reopening is rejected.
func (h *TicketHandler) Update(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	if !access.IsStaff(caller) {
		return mapError(c, access.ErrForbidden)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req updateTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Priority != nil && !validPriority(*req.Priority) {
		return badRequest(c, FieldErrors{"priority": "unknown priority"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.Store.GetSupportTicket(ctx, id)
	if err != nil {
		return mapError(c, err)
	}

	upd := repository.SupportTicketUpdate{
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID,
	}
	if req.Status != nil && *req.Status != t.Status {
		if !ticketTransitionOK(t.Status, *req.Status) {
			return badRequest(c, FieldErrors{"status": "invalid transition from " + t.Status})
		}
		upd.Status = req.Status
		if *req.Status == model.TicketClosed {
			now := time.Now().UTC()
			upd.ClosedAt = &now
		}
	}
	t, err = h.Store.UpdateSupportTicket(ctx, id, upd)
	if err != nil {
		return mapError(c, err)
	}
	action := model.ActionUpdated
	if upd.Status != nil {
		action = model.ActionStatusChanged
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   action,
		ResourceType: "support_ticket",
		ResourceID:   t.ID,
		ProjectID:    t.ProjectID,
		Description:  "updated ticket " + t.Subject,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// FinanceHandler serves invoices, quotes and contracts. Clients see
// only their own documents; managers see documents of the projects
// they manage; admins see everything.
type FinanceHandler struct {
	Store    repository.Store
	Access   *access.Engine
	Recorder *activity.Recorder
}

func NewFinanceHandler(store repository.Store, eng *access.Engine, rec *activity.Recorder) *FinanceHandler {
	return &FinanceHandler{Store: store, Access: eng, Recorder: rec}
}

func validFinanceType(s string) bool {
	switch s {
	case model.FinanceInvoice, model.FinanceQuote, model.FinanceContract:
		return true
	}
	return false
}

func validFinanceStatus(s string) bool {
	switch s {
	case model.FinancePending, model.FinancePaid, model.FinanceOverdue:
		return true
	}
	return false
}

// List returns the caller's visible documents.
func (h *FinanceHandler) List(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	switch caller.Role {
	case model.RoleAdmin:
		docs, err := h.Store.ListFinanceDocuments(ctx)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(http.StatusOK, docs)
	case model.RoleClient:
		docs, err := h.Store.ListFinanceDocumentsByClient(ctx, caller.ID)
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(http.StatusOK, docs)
	case model.RoleManager:
		scope, err := h.Access.ProjectScope(ctx, caller)
		if err != nil {
			return mapError(c, err)
		}
		docs, err := h.Store.ListFinanceDocumentsByProjects(ctx, scope.ProjectIDs())
		if err != nil {
			return mapError(c, err)
		}
		return c.JSON(http.StatusOK, docs)
	}
	return mapError(c, access.ErrForbidden)
}

type createFinanceReq struct {
	ClientID    uint64     `json:"clientId"`
	ProjectID   *uint64    `json:"projectId"`
	Type        string     `json:"type"`
	AmountCents int64      `json:"amountCents"`
	DueDate     *time.Time `json:"dueDate"`
}

// Create makes a document. A client's document is always their own
// regardless of the submitted clientId; staff must name the client.
func (h *FinanceHandler) Create(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req createFinanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if !validFinanceType(req.Type) {
		fields["type"] = "must be invoice, quote or contract"
	}
	if req.AmountCents < 0 {
		fields["amountCents"] = "cannot be negative"
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
	d := &model.FinanceDocument{
		ClientID:    req.ClientID,
		ProjectID:   req.ProjectID,
		Type:        req.Type,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	}
	if err := h.Store.CreateFinanceDocument(ctx, d); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "finance_document",
		ResourceID:   d.ID,
		ProjectID:    d.ProjectID,
		Description:  "created " + d.Type,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

type updateFinanceReq struct {
	Status  *string    `json:"status"`
	DueDate *time.Time `json:"dueDate"`
}

// Update changes status or due date. Staff only: admins anywhere,
// managers within their project scope; clients never mutate finance
// records.
func (h *FinanceHandler) Update(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	if !access.IsStaff(caller) {
		return mapError(c, access.ErrForbidden)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req updateFinanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != nil && !validFinanceStatus(*req.Status) {
		return badRequest(c, FieldErrors{"status": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	d, err := h.Store.GetFinanceDocument(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	if caller.Role == model.RoleManager {
		if d.ProjectID == nil {
			return mapError(c, access.ErrForbidden)
		}
		if _, err := h.Access.AuthorizeProject(ctx, caller, *d.ProjectID); err != nil {
			return mapError(c, err)
		}
	}
	d, err = h.Store.UpdateFinanceDocument(ctx, id, repository.FinanceDocumentUpdate{
		Status:  req.Status,
		DueDate: req.DueDate,
	})
	if err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionUpdated,
		ResourceType: "finance_document",
		ResourceID:   d.ID,
		ProjectID:    d.ProjectID,
		Description:  "updated " + d.Type,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// AdminHandler covers user management. Every route here sits behind
// the admin role gate in the router.
type AdminHandler struct {
	Store    repository.Store
	Recorder *activity.Recorder
}

func NewAdminHandler(store repository.Store, rec *activity.Recorder) *AdminHandler {
	return &AdminHandler{Store: store, Recorder: rec}
}

// ListUsers returns every account.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateUser provisions an account with any role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fields["email"] = "valid email required"
	}
	if len(req.Password) < 6 {
		fields["password"] = "at least 6 characters"
	}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	if !model.ValidRole(req.Role) {
		fields["role"] = "must be client, manager or admin"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return mapError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u := &model.User{
		Email:          req.Email,
		PasswordHash:   hash,
		Name:           strings.TrimSpace(req.Name),
		Role:           req.Role,
		AvatarInitials: model.Initials(req.Name),
	}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionCreated,
		ResourceType: "user",
		ResourceID:   u.ID,
		Description:  "created user " + u.Email,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type updateUserReq struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// UpdateUser changes a user's name or role.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		fields["name"] = "cannot be empty"
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		fields["role"] = "must be client, manager or admin"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	upd := repository.UserUpdate{Role: req.Role}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		initials := model.Initials(name)
		upd.Name = &name
		upd.AvatarInitials = &initials
	}
	u, err := h.Store.UpdateUser(ctx, id, upd)
	if err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionUpdated,
		ResourceType: "user",
		ResourceID:   u.ID,
		Description:  "updated user " + u.Email,
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser removes an account. Deleting yourself is rejected;
// records referencing the user are left in place.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	if id == caller.ID {
		return mapError(c, access.ErrForbidden)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Store.GetUser(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	if err := h.Store.DeleteUser(ctx, id); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionDeleted,
		ResourceType: "user",
		ResourceID:   u.ID,
		Description:  "deleted user " + u.Email,
	}); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

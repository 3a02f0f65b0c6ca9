package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// AuthHandler bundles dependencies for the credential and session
// endpoints.
type AuthHandler struct {
	Store    repository.Store
	Sessions *auth.SessionManager
	Recorder *activity.Recorder
}

func NewAuthHandler(store repository.Store, sessions *auth.SessionManager, rec *activity.Recorder) *AuthHandler {
	return &AuthHandler{Store: store, Sessions: sessions, Recorder: rec}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func validateCredentials(email, password string) FieldErrors {
	fields := FieldErrors{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "valid email required"
	}
	if len(password) < 6 {
		fields["password"] = "minimum 6 characters"
	}
	return fields
}

// Register creates a client-role account and logs it in immediately.
// Self-registration never grants any other role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	fields := validateCredentials(req.Email, req.Password)
	if req.Name == "" {
		fields["name"] = "required"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return mapError(c, err)
	}
	u := &model.User{
		Email:          req.Email,
		PasswordHash:   hash,
		Role:           model.RoleClient,
		Name:           req.Name,
		AvatarInitials: model.Initials(req.Name),
	}
	if err := h.Store.CreateUser(ctx, u); err != nil {
		return mapError(c, err)
	}
	token, err := h.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, authResp{Token: token, User: u})
}

// Login verifies credentials and issues a session. Unknown email and
// wrong password produce the identical response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, FieldErrors{"email": "required", "password": "required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return mapError(c, err)
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, err := h.Sessions.Issue(ctx, u.ID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, authResp{Token: token, User: u})
}

// Logout revokes the presented session server-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Sessions.Revoke(ctx, middleware.SessionToken(c)); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the resolved current user.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword updates the caller's own password after verifying
// the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.NewPassword) < 6 {
		return badRequest(c, FieldErrors{"newPassword": "minimum 6 characters"})
	}
	if !auth.VerifyPassword(caller.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "current password mismatch"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return mapError(c, err)
	}
	if _, err := h.Store.UpdateUser(ctx, caller.ID, repository.UserUpdate{PasswordHash: &hash}); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionUpdated,
		ResourceType: "user",
		ResourceID:   caller.ID,
		Description:  "changed password",
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ForgotPassword accepts a reset request and always answers the same
// generic success, whether or not the email exists. No token is
// generated and no email is sent; dispatch is outside this service.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.Bind(&req)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "if the account exists, reset instructions have been sent",
	})
}

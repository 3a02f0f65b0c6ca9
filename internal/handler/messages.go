package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/client-portal/internal/access"
	"github.com/iliyamo/client-portal/internal/activity"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// MessageHandler serves direct messages. The caller is always one end
// of the conversation; the project-scoped variant additionally passes
// the project ownership gate.
type MessageHandler struct {
	Store    repository.Store
	Access   *access.Engine
	Recorder *activity.Recorder
}

func NewMessageHandler(store repository.Store, eng *access.Engine, rec *activity.Recorder) *MessageHandler {
	return &MessageHandler{Store: store, Access: eng, Recorder: rec}
}

type sendMessageReq struct {
	ReceiverID uint64  `json:"receiverId"`
	Content    string  `json:"content"`
	ProjectID  *uint64 `json:"projectId"`
}

// Send creates a message from the caller. When project-scoped, the
// caller must own the project.
func (h *MessageHandler) Send(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	fields := FieldErrors{}
	if req.ReceiverID == 0 {
		fields["receiverId"] = "required"
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "required"
	}
	if len(fields) > 0 {
		return badRequest(c, fields)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Store.GetUser(ctx, req.ReceiverID); err != nil {
		return mapError(c, err)
	}
	if req.ProjectID != nil {
		if _, err := h.Access.AuthorizeProject(ctx, caller, *req.ProjectID); err != nil {
			return mapError(c, err)
		}
	}
	m := &model.Message{
		SenderID:   caller.ID,
		ReceiverID: req.ReceiverID,
		ProjectID:  req.ProjectID,
		Content:    req.Content,
	}
	if err := h.Store.CreateMessage(ctx, m); err != nil {
		return mapError(c, err)
	}
	if _, err := h.Recorder.Record(ctx, activity.Entry{
		UserID:       caller.ID,
		ActionType:   model.ActionMessageSent,
		ResourceType: "message",
		ResourceID:   m.ID,
		ProjectID:    m.ProjectID,
		Description:  "sent a message",
	}); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// ListConversation returns the caller's conversation with the user
// named by ?with=, chronological. The caller is a participant of
// every returned message by construction.
func (h *MessageHandler) ListConversation(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	other, err := strconv.ParseUint(c.QueryParam("with"), 10, 64)
	if err != nil || other == 0 {
		return badRequest(c, FieldErrors{"with": "user id required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	msgs, err := h.Store.ListMessagesBetween(ctx, caller.ID, other)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// MarkRead flips a message to read. Only the receiver may do so, and
// a second call is a no-op; the flag never reverts.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	caller := middleware.CurrentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, FieldErrors{"id": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	m, err := h.Store.GetMessage(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	if m.ReceiverID != caller.ID {
		return mapError(c, access.ErrForbidden)
	}
	if m.IsRead {
		return c.JSON(http.StatusOK, m)
	}
	m, err = h.Store.MarkMessageRead(ctx, id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

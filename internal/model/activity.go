package model

import "time"

// Action types recorded in the activity feed.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionCommented     = "commented"
	ActionMessageSent   = "message_sent"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
)

// Activity is an append-only audit record of a state-changing
// operation. It is written exactly once per logical operation and is
// never updated or deleted. Activities feed dashboards and timelines;
// they are not the source of truth for any entity.
type Activity struct {
	ID           uint64            `json:"id"`
	UserID       uint64            `json:"userId"`
	ActionType   string            `json:"actionType"`
	ResourceType string            `json:"resourceType"`
	ResourceID   uint64            `json:"resourceId"`
	ProjectID    *uint64           `json:"projectId,omitempty"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

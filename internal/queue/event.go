// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityRecordedEvent is published after an audit entry is written.
// It carries enough for downstream feed and notification consumers to
// act without querying the primary database. The database row remains
// the source of truth; this stream is observability only.
type ActivityRecordedEvent struct {
	ActivityID   uint64            `json:"activity_id"`
	UserID       uint64            `json:"user_id"`
	ActionType   string            `json:"action_type"`
	ResourceType string            `json:"resource_type"`
	ResourceID   uint64            `json:"resource_id"`
	ProjectID    *uint64           `json:"project_id,omitempty"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	RecordedAt   string            `json:"recorded_at"`
}

package model

import "time"

// Message is a direct message between two users, optionally scoped to
// a project. IsRead transitions false to true exactly once and never
// reverses.
type Message struct {
	ID         uint64    `json:"id"`
	SenderID   uint64    `json:"senderId"`
	ReceiverID uint64    `json:"receiverId"`
	ProjectID  *uint64   `json:"projectId,omitempty"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

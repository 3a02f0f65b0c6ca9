package model

import "time"

// Support ticket statuses. Transitions are one-way:
// open -> in_progress -> closed.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketClosed     = "closed"
)

// SupportTicket is a client-raised request, optionally tied to a
// project and optionally assigned to a staff user. ClosedAt is set
// exactly when the ticket transitions to closed.
type SupportTicket struct {
	ID           uint64     `json:"id"`
	ClientID     uint64     `json:"clientId"`
	ProjectID    *uint64    `json:"projectId,omitempty"`
	Subject      string     `json:"subject"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssignedToID *uint64    `json:"assignedToId,omitempty"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

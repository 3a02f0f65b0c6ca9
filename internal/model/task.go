package model

import "time"

// Task statuses and priorities.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task belongs to a project; ownership checks resolve through the
// parent project. CommentCount is derived and maintained by the
// repository only, never supplied by callers.
type Task struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	ProjectID    uint64    `json:"projectId"`
	CreatedByID  uint64    `json:"createdById"`
	AssignedToID *uint64   `json:"assignedToId,omitempty"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TaskComment is a comment on a task. Creating one atomically
// increments the parent task's CommentCount.
type TaskComment struct {
	ID        uint64    `json:"id"`
	TaskID    uint64    `json:"taskId"`
	UserID    uint64    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

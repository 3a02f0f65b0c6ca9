package model

import "time"

// Project statuses.
const (
	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
)

// Project is the central ownership anchor of the portal: a client owns
// it and a manager may be assigned to it. Access to tasks, files,
// messages and finance documents is derived from project ownership.
type Project struct {
	ID        uint64     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Progress  int        `json:"progress"` // 0..100
	ClientID  uint64     `json:"clientId"`
	ManagerID *uint64    `json:"managerId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Phase statuses.
const (
	PhasePending   = "pending"
	PhaseActive    = "active"
	PhaseCompleted = "completed"
)

// ProjectPhase is a named stage of a project. Phases of a project are
// listed ordered by SortOrder ascending.
type ProjectPhase struct {
	ID        uint64     `json:"id"`
	ProjectID uint64     `json:"projectId"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	SortOrder int        `json:"sortOrder"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ProjectFile records metadata of an uploaded file. File content is
// stored elsewhere; only the path reference lives here.
type ProjectFile struct {
	ID           uint64    `json:"id"`
	ProjectID    uint64    `json:"projectId"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	UploadedByID uint64    `json:"uploadedById"`
	CreatedAt    time.Time `json:"createdAt"`
}

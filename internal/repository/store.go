package repository

import (
	"context"
	"time"

	"github.com/iliyamo/client-portal/internal/model"
)

// UserUpdate carries a partial user update. Nil fields are left
// untouched (merge semantics, never replace).
type UserUpdate struct {
	Email          *string
	Name           *string
	Role           *string
	PasswordHash   *string
	AvatarInitials *string
}

// ProjectUpdate carries a partial project update. Identity and the
// owning client are not updatable here.
type ProjectUpdate struct {
	Name      *string
	Status    *string
	Progress  *int
	ManagerID *uint64
	StartDate *time.Time
	EndDate   *time.Time
}

// TaskUpdate carries a partial task update. CommentCount is derived
// and deliberately absent.
type TaskUpdate struct {
	Title        *string
	Status       *string
	Priority     *string
	AssignedToID *uint64
}

// FinanceDocumentUpdate carries a partial finance document update.
type FinanceDocumentUpdate struct {
	Status  *string
	DueDate *time.Time
}

// SupportTicketUpdate carries a partial support ticket update.
type SupportTicketUpdate struct {
	Status       *string
	Priority     *string
	AssignedToID *uint64
	ClosedAt     *time.Time
}

// Store is the uniform CRUD and scoped-query contract shared by the
// volatile and durable backends.
//
// Create* methods assign the identity, apply field defaults and
// timestamps, and write the canonical record back into the given
// struct. Update* methods merge non-nil fields and return the updated
// record, or ErrNotFound when the id is absent.
//
// Ordering guarantees: project phases are ordered by SortOrder
// ascending; messages and comments by creation time ascending;
// activities by creation time descending. Everything else is ordered
// by id ascending.
type Store interface {
	// Users. DeleteUser performs no referential cleanup: projects,
	// tasks and messages referencing the user are left orphaned.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	CountUsers(ctx context.Context) (int, error)

	// Sessions, keyed by the SHA-256 digest of the opaque token.
	// DeleteExpiredSessions sweeps rows past their expiry and reports
	// how many were removed; resolution additionally deletes expired
	// rows lazily on touch.
	CreateSession(ctx context.Context, s *model.Session) error
	GetSessionByTokenHash(ctx context.Context, hash string) (*model.Session, error)
	DeleteSessionByTokenHash(ctx context.Context, hash string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Projects.
	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id uint64) (*model.Project, error)
	ListProjects(ctx context.Context) ([]*model.Project, error)
	ListProjectsByClient(ctx context.Context, clientID uint64) ([]*model.Project, error)
	ListProjectsByManager(ctx context.Context, managerID uint64) ([]*model.Project, error)
	UpdateProject(ctx context.Context, id uint64, upd ProjectUpdate) (*model.Project, error)

	// Project phases.
	CreateProjectPhase(ctx context.Context, ph *model.ProjectPhase) error
	ListProjectPhases(ctx context.Context, projectID uint64) ([]*model.ProjectPhase, error)

	// Tasks and comments. CreateTaskComment atomically increments the
	// parent task's CommentCount by exactly one.
	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, id uint64) (*model.Task, error)
	ListTasksByProject(ctx context.Context, projectID uint64) ([]*model.Task, error)
	ListTasksByProjects(ctx context.Context, projectIDs []uint64) ([]*model.Task, error)
	UpdateTask(ctx context.Context, id uint64, upd TaskUpdate) (*model.Task, error)
	CreateTaskComment(ctx context.Context, c *model.TaskComment) error
	ListTaskComments(ctx context.Context, taskID uint64) ([]*model.TaskComment, error)

	// Messages. MarkMessageRead transitions IsRead false->true only
	// and is a no-op on an already-read message.
	CreateMessage(ctx context.Context, m *model.Message) error
	GetMessage(ctx context.Context, id uint64) (*model.Message, error)
	ListMessagesBetween(ctx context.Context, userA, userB uint64) ([]*model.Message, error)
	ListMessagesByProject(ctx context.Context, projectID uint64) ([]*model.Message, error)
	MarkMessageRead(ctx context.Context, id uint64) (*model.Message, error)

	// Activities are append-only; there is no update or delete.
	CreateActivity(ctx context.Context, a *model.Activity) error
	ListActivities(ctx context.Context, limit int) ([]*model.Activity, error)
	ListActivitiesByProjects(ctx context.Context, projectIDs []uint64, limit int) ([]*model.Activity, error)

	// Project files (metadata only).
	CreateProjectFile(ctx context.Context, f *model.ProjectFile) error
	ListProjectFiles(ctx context.Context, projectID uint64) ([]*model.ProjectFile, error)

	// Finance documents.
	CreateFinanceDocument(ctx context.Context, d *model.FinanceDocument) error
	GetFinanceDocument(ctx context.Context, id uint64) (*model.FinanceDocument, error)
	ListFinanceDocuments(ctx context.Context) ([]*model.FinanceDocument, error)
	ListFinanceDocumentsByClient(ctx context.Context, clientID uint64) ([]*model.FinanceDocument, error)
	ListFinanceDocumentsByProjects(ctx context.Context, projectIDs []uint64) ([]*model.FinanceDocument, error)
	UpdateFinanceDocument(ctx context.Context, id uint64, upd FinanceDocumentUpdate) (*model.FinanceDocument, error)

	// Support tickets.
	CreateSupportTicket(ctx context.Context, t *model.SupportTicket) error
	GetSupportTicket(ctx context.Context, id uint64) (*model.SupportTicket, error)
	ListSupportTickets(ctx context.Context) ([]*model.SupportTicket, error)
	ListSupportTicketsByClient(ctx context.Context, clientID uint64) ([]*model.SupportTicket, error)
	UpdateSupportTicket(ctx context.Context, id uint64, upd SupportTicketUpdate) (*model.SupportTicket, error)
}

// clampProgress bounds a project progress value to [0,100].
func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// taskDefaults fills status and priority defaults on a new task.
func taskDefaults(t *model.Task) {
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
}

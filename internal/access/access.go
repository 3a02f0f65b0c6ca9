// Package access is the portal's access decision engine. Decisions
// are pure functions of (caller, resource instance) and are
// re-evaluated on every request; nothing here is cached, because a
// stale decision is a privilege leak.
//
// Two layers apply. The role gate admits whole operation classes
// (admin-only user management). The ownership gate checks the specific
// instance: a client owns a project when project.ClientID matches, a
// manager when project.ManagerID matches, and resources under a
// project inherit its ownership. Absence of a matching rule is a
// denial.
package access

import (
	"context"
	"errors"
	"sort"

	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// ErrForbidden is returned when the caller fails the role or
// ownership gate. Handlers translate it into an HTTP 403, which is
// deliberately distinct from 404.
var ErrForbidden = errors.New("forbidden")

// Scope is a caller's resolved project view: either everything
// (admin) or an explicit id set.
type Scope struct {
	All bool
	IDs map[uint64]bool
}

// Contains reports whether projectID falls inside the scope.
func (s Scope) Contains(projectID uint64) bool {
	return s.All || s.IDs[projectID]
}

// ProjectIDs returns the scoped ids sorted ascending, for feeding
// into the store's IN-set list queries. Meaningless when All is set.
func (s Scope) ProjectIDs() []uint64 {
	ids := make([]uint64, 0, len(s.IDs))
	for id := range s.IDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Engine evaluates access decisions against the store.
type Engine struct {
	store repository.Store
}

// NewEngine binds the engine to a store.
func NewEngine(store repository.Store) *Engine {
	return &Engine{store: store}
}

// CanViewProject is the instance-level ownership predicate shared by
// single reads, mutations and list filtering.
func CanViewProject(caller *model.User, p *model.Project) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		return p.ClientID == caller.ID
	case model.RoleManager:
		return p.ManagerID != nil && *p.ManagerID == caller.ID
	}
	return false
}

// ProjectScope resolves the caller's owned project set once; children
// (tasks, activities, finance documents) are then filtered by
// project-id membership against it.
func (e *Engine) ProjectScope(ctx context.Context, caller *model.User) (Scope, error) {
	switch caller.Role {
	case model.RoleAdmin:
		return Scope{All: true}, nil
	case model.RoleClient:
		projects, err := e.store.ListProjectsByClient(ctx, caller.ID)
		if err != nil {
			return Scope{}, err
		}
		return scopeOf(projects), nil
	case model.RoleManager:
		projects, err := e.store.ListProjectsByManager(ctx, caller.ID)
		if err != nil {
			return Scope{}, err
		}
		return scopeOf(projects), nil
	}
	// Unknown role: empty scope, nothing visible.
	return Scope{IDs: map[uint64]bool{}}, nil
}

// OwnedProjects lists the projects the caller may see, already
// filtered by role: everything for admins, owned for clients, managed
// for managers. An unknown role sees nothing.
func (e *Engine) OwnedProjects(ctx context.Context, caller *model.User) ([]*model.Project, error) {
	switch caller.Role {
	case model.RoleAdmin:
		return e.store.ListProjects(ctx)
	case model.RoleClient:
		return e.store.ListProjectsByClient(ctx, caller.ID)
	case model.RoleManager:
		return e.store.ListProjectsByManager(ctx, caller.ID)
	}
	return []*model.Project{}, nil
}

func scopeOf(projects []*model.Project) Scope {
	ids := make(map[uint64]bool, len(projects))
	for _, p := range projects {
		ids[p.ID] = true
	}
	return Scope{IDs: ids}
}

// AuthorizeProject loads the project and applies the ownership gate.
// A missing id surfaces as repository.ErrNotFound; an existing but
// foreign one as ErrForbidden.
func (e *Engine) AuthorizeProject(ctx context.Context, caller *model.User, projectID uint64) (*model.Project, error) {
	p, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(caller, p) {
		return nil, ErrForbidden
	}
	return p, nil
}

// AuthorizeTask authorizes a task transitively through its parent
// project and returns both.
func (e *Engine) AuthorizeTask(ctx context.Context, caller *model.User, taskID uint64) (*model.Task, *model.Project, error) {
	t, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	p, err := e.AuthorizeProject(ctx, caller, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// Filter keeps the items whose parent project falls inside scope. It
// is the single implementation of the resolve-owned-set-then-filter
// pattern used by every child-entity list operation.
func Filter[T any](items []T, projectID func(T) uint64, scope Scope) []T {
	if scope.All {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if scope.Contains(projectID(it)) {
			out = append(out, it)
		}
	}
	return out
}

// RequireAdmin is the role gate for admin-only operation classes.
func RequireAdmin(caller *model.User) error {
	if caller.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// IsStaff reports whether the caller is a manager or admin; some
// collections (support tickets) are visible to all staff.
func IsStaff(caller *model.User) bool {
	return caller.Role == model.RoleManager || caller.Role == model.RoleAdmin
}

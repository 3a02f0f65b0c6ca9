package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/client-portal/internal/model"
)

// MemoryStore is the volatile backend. It exists for single-process
// development and tests; all state is lost on shutdown. A single
// mutex guards every map and identity counter, so id assignment stays
// monotonic under concurrent writers.
type MemoryStore struct {
	mu sync.Mutex

	users    map[uint64]*model.User
	sessions map[string]*model.Session
	projects map[uint64]*model.Project
	phases   map[uint64]*model.ProjectPhase
	tasks    map[uint64]*model.Task
	comments map[uint64]*model.TaskComment
	messages map[uint64]*model.Message
	acts     map[uint64]*model.Activity
	files    map[uint64]*model.ProjectFile
	finance  map[uint64]*model.FinanceDocument
	tickets  map[uint64]*model.SupportTicket

	nextUser    uint64
	nextSession uint64
	nextProject uint64
	nextPhase   uint64
	nextTask    uint64
	nextComment uint64
	nextMessage uint64
	nextAct     uint64
	nextFile    uint64
	nextFinance uint64
	nextTicket  uint64
}

// NewMemoryStore returns an empty volatile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint64]*model.User),
		sessions: make(map[string]*model.Session),
		projects: make(map[uint64]*model.Project),
		phases:   make(map[uint64]*model.ProjectPhase),
		tasks:    make(map[uint64]*model.Task),
		comments: make(map[uint64]*model.TaskComment),
		messages: make(map[uint64]*model.Message),
		acts:     make(map[uint64]*model.Activity),
		files:    make(map[uint64]*model.ProjectFile),
		finance:  make(map[uint64]*model.FinanceDocument),
		tickets:  make(map[uint64]*model.SupportTicket),
	}
}

// dup returns a copy so callers never alias store-internal records.
func dup[T any](v *T) *T {
	c := *v
	return &c
}

func idSet(ids []uint64) map[uint64]bool {
	s := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// ----- users -----

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, other := range s.users {
		if other.Email == email {
			return ErrEmailExists
		}
	}
	s.nextUser++
	now := time.Now().UTC()
	u.ID = s.nextUser
	u.Email = email
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	s.users[u.ID] = dup(u)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(u), nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return dup(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, dup(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		for _, other := range s.users {
			if other.ID != id && other.Email == email {
				return nil, ErrEmailExists
			}
		}
		u.Email = email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.AvatarInitials != nil {
		u.AvatarInitials = *upd.AvatarInitials
	}
	u.UpdatedAt = time.Now().UTC()
	return dup(u), nil
}

// DeleteUser removes the user row only; referencing records are left
// orphaned, matching the durable backend.
func (s *MemoryStore) DeleteUser(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

// ----- sessions -----

func (s *MemoryStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSession++
	sess.ID = s.nextSession
	sess.CreatedAt = time.Now().UTC()
	s.sessions[sess.TokenHash] = dup(sess)
	return nil
}

func (s *MemoryStore) GetSessionByTokenHash(ctx context.Context, hash string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(sess), nil
}

func (s *MemoryStore) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[hash]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, hash)
	return nil
}

func (s *MemoryStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	n := 0
	for hash, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

// ----- projects -----

func (s *MemoryStore) CreateProject(ctx context.Context, p *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProject++
	now := time.Now().UTC()
	p.ID = s.nextProject
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	p.Progress = clampProgress(p.Progress)
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects[p.ID] = dup(p)
	return nil
}

func (s *MemoryStore) GetProject(ctx context.Context, id uint64) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(p), nil
}

func (s *MemoryStore) listProjectsWhere(keep func(*model.Project) bool) []*model.Project {
	out := []*model.Project{}
	for _, p := range s.projects {
		if keep(p) {
			out = append(out, dup(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listProjectsWhere(func(*model.Project) bool { return true }), nil
}

func (s *MemoryStore) ListProjectsByClient(ctx context.Context, clientID uint64) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listProjectsWhere(func(p *model.Project) bool { return p.ClientID == clientID }), nil
}

func (s *MemoryStore) ListProjectsByManager(ctx context.Context, managerID uint64) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listProjectsWhere(func(p *model.Project) bool {
		return p.ManagerID != nil && *p.ManagerID == managerID
	}), nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, id uint64, upd ProjectUpdate) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Progress != nil {
		p.Progress = clampProgress(*upd.Progress)
	}
	if upd.ManagerID != nil {
		p.ManagerID = dup(upd.ManagerID)
	}
	if upd.StartDate != nil {
		p.StartDate = dup(upd.StartDate)
	}
	if upd.EndDate != nil {
		p.EndDate = dup(upd.EndDate)
	}
	p.UpdatedAt = time.Now().UTC()
	return dup(p), nil
}

// ----- project phases -----

func (s *MemoryStore) CreateProjectPhase(ctx context.Context, ph *model.ProjectPhase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[ph.ProjectID]; !ok {
		return ErrNotFound
	}
	s.nextPhase++
	ph.ID = s.nextPhase
	if ph.Status == "" {
		ph.Status = model.PhasePending
	}
	ph.CreatedAt = time.Now().UTC()
	s.phases[ph.ID] = dup(ph)
	return nil
}

func (s *MemoryStore) ListProjectPhases(ctx context.Context, projectID uint64) ([]*model.ProjectPhase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.ProjectPhase{}
	for _, ph := range s.phases {
		if ph.ProjectID == projectID {
			out = append(out, dup(ph))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ----- tasks -----

func (s *MemoryStore) CreateTask(ctx context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[t.ProjectID]; !ok {
		return ErrNotFound
	}
	s.nextTask++
	now := time.Now().UTC()
	t.ID = s.nextTask
	taskDefaults(t)
	t.CommentCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = dup(t)
	return nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(t), nil
}

func (s *MemoryStore) ListTasksByProject(ctx context.Context, projectID uint64) ([]*model.Task, error) {
	return s.ListTasksByProjects(ctx, []uint64{projectID})
}

func (s *MemoryStore) ListTasksByProjects(ctx context.Context, projectIDs []uint64) ([]*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(projectIDs)
	out := []*model.Task{}
	for _, t := range s.tasks {
		if want[t.ProjectID] {
			out = append(out, dup(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateTask(ctx context.Context, id uint64, upd TaskUpdate) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssignedToID != nil {
		t.AssignedToID = dup(upd.AssignedToID)
	}
	t.UpdatedAt = time.Now().UTC()
	return dup(t), nil
}

// CreateTaskComment appends the comment and increments the parent
// task's CommentCount under the same lock, so the two can never drift.
func (s *MemoryStore) CreateTaskComment(ctx context.Context, c *model.TaskComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[c.TaskID]
	if !ok {
		return ErrNotFound
	}
	s.nextComment++
	c.ID = s.nextComment
	c.CreatedAt = time.Now().UTC()
	s.comments[c.ID] = dup(c)
	t.CommentCount++
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ListTaskComments(ctx context.Context, taskID uint64) ([]*model.TaskComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.TaskComment{}
	for _, c := range s.comments {
		if c.TaskID == taskID {
			out = append(out, dup(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- messages -----

func (s *MemoryStore) CreateMessage(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessage++
	m.ID = s.nextMessage
	m.IsRead = false
	m.CreatedAt = time.Now().UTC()
	s.messages[m.ID] = dup(m)
	return nil
}

func (s *MemoryStore) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(m), nil
}

func (s *MemoryStore) ListMessagesBetween(ctx context.Context, userA, userB uint64) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Message{}
	for _, m := range s.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, dup(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListMessagesByProject(ctx context.Context, projectID uint64) ([]*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Message{}
	for _, m := range s.messages {
		if m.ProjectID != nil && *m.ProjectID == projectID {
			out = append(out, dup(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MarkMessageRead is idempotent: an already-read message stays read.
func (s *MemoryStore) MarkMessageRead(ctx context.Context, id uint64) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.IsRead = true
	return dup(m), nil
}

// ----- activities -----

func (s *MemoryStore) CreateActivity(ctx context.Context, a *model.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAct++
	a.ID = s.nextAct
	a.CreatedAt = time.Now().UTC()
	s.acts[a.ID] = dup(a)
	return nil
}

func (s *MemoryStore) listActivitiesWhere(keep func(*model.Activity) bool, limit int) []*model.Activity {
	out := []*model.Activity{}
	for _, a := range s.acts {
		if keep(a) {
			out = append(out, dup(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *MemoryStore) ListActivities(ctx context.Context, limit int) ([]*model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listActivitiesWhere(func(*model.Activity) bool { return true }, limit), nil
}

func (s *MemoryStore) ListActivitiesByProjects(ctx context.Context, projectIDs []uint64, limit int) ([]*model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(projectIDs)
	return s.listActivitiesWhere(func(a *model.Activity) bool {
		return a.ProjectID != nil && want[*a.ProjectID]
	}, limit), nil
}

// ----- project files -----

func (s *MemoryStore) CreateProjectFile(ctx context.Context, f *model.ProjectFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[f.ProjectID]; !ok {
		return ErrNotFound
	}
	s.nextFile++
	f.ID = s.nextFile
	f.CreatedAt = time.Now().UTC()
	s.files[f.ID] = dup(f)
	return nil
}

func (s *MemoryStore) ListProjectFiles(ctx context.Context, projectID uint64) ([]*model.ProjectFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.ProjectFile{}
	for _, f := range s.files {
		if f.ProjectID == projectID {
			out = append(out, dup(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ----- finance documents -----

func (s *MemoryStore) CreateFinanceDocument(ctx context.Context, d *model.FinanceDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFinance++
	now := time.Now().UTC()
	d.ID = s.nextFinance
	if d.Status == "" {
		d.Status = model.FinancePending
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	s.finance[d.ID] = dup(d)
	return nil
}

func (s *MemoryStore) GetFinanceDocument(ctx context.Context, id uint64) (*model.FinanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.finance[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(d), nil
}

func (s *MemoryStore) listFinanceWhere(keep func(*model.FinanceDocument) bool) []*model.FinanceDocument {
	out := []*model.FinanceDocument{}
	for _, d := range s.finance {
		if keep(d) {
			out = append(out, dup(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) ListFinanceDocuments(ctx context.Context) ([]*model.FinanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listFinanceWhere(func(*model.FinanceDocument) bool { return true }), nil
}

func (s *MemoryStore) ListFinanceDocumentsByClient(ctx context.Context, clientID uint64) ([]*model.FinanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listFinanceWhere(func(d *model.FinanceDocument) bool { return d.ClientID == clientID }), nil
}

func (s *MemoryStore) ListFinanceDocumentsByProjects(ctx context.Context, projectIDs []uint64) ([]*model.FinanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := idSet(projectIDs)
	return s.listFinanceWhere(func(d *model.FinanceDocument) bool {
		return d.ProjectID != nil && want[*d.ProjectID]
	}), nil
}

func (s *MemoryStore) UpdateFinanceDocument(ctx context.Context, id uint64, upd FinanceDocumentUpdate) (*model.FinanceDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.finance[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Status != nil {
		d.Status = *upd.Status
	}
	if upd.DueDate != nil {
		d.DueDate = dup(upd.DueDate)
	}
	d.UpdatedAt = time.Now().UTC()
	return dup(d), nil
}

// ----- support tickets -----

func (s *MemoryStore) CreateSupportTicket(ctx context.Context, t *model.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicket++
	now := time.Now().UTC()
	t.ID = s.nextTicket
	if t.Status == "" {
		t.Status = model.TicketOpen
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tickets[t.ID] = dup(t)
	return nil
}

func (s *MemoryStore) GetSupportTicket(ctx context.Context, id uint64) (*model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return dup(t), nil
}

func (s *MemoryStore) ListSupportTickets(ctx context.Context) ([]*model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.SupportTicket{}
	for _, t := range s.tickets {
		out = append(out, dup(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListSupportTicketsByClient(ctx context.Context, clientID uint64) ([]*model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.SupportTicket{}
	for _, t := range s.tickets {
		if t.ClientID == clientID {
			out = append(out, dup(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateSupportTicket(ctx context.Context, id uint64, upd SupportTicketUpdate) (*model.SupportTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssignedToID != nil {
		t.AssignedToID = dup(upd.AssignedToID)
	}
	if upd.ClosedAt != nil {
		t.ClosedAt = dup(upd.ClosedAt)
	}
	t.UpdatedAt = time.Now().UTC()
	return dup(t), nil
}

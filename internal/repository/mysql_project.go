package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/client-portal/internal/model"
)

const projectCols = "id, name, status, progress, client_id, manager_id, start_date, end_date, created_at, updated_at"

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var (
		p       model.Project
		manager sql.NullInt64
		start   sql.NullTime
		end     sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.Status, &p.Progress, &p.ClientID,
		&manager, &start, &end, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.ManagerID = fromNullU64(manager)
	p.StartDate = fromNullTime(start)
	p.EndDate = fromNullTime(end)
	return &p, nil
}

func (s *MySQLStore) CreateProject(ctx context.Context, p *model.Project) error {
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	p.Progress = clampProgress(p.Progress)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (name, status, progress, client_id, manager_id, start_date, end_date) VALUES (?,?,?,?,?,?,?)",
		p.Name, p.Status, p.Progress, p.ClientID, nullU64(p.ManagerID),
		nullTime(p.StartDate), nullTime(p.EndDate))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectCols+" FROM projects WHERE id=?", id))
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

func (s *MySQLStore) GetProject(ctx context.Context, id uint64) (*model.Project, error) {
	return scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectCols+" FROM projects WHERE id=?", id))
}

func (s *MySQLStore) queryProjects(ctx context.Context, q string, args ...any) ([]*model.Project, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListProjects(ctx context.Context) ([]*model.Project, error) {
	return s.queryProjects(ctx, "SELECT "+projectCols+" FROM projects ORDER BY id")
}

func (s *MySQLStore) ListProjectsByClient(ctx context.Context, clientID uint64) ([]*model.Project, error) {
	return s.queryProjects(ctx,
		"SELECT "+projectCols+" FROM projects WHERE client_id=? ORDER BY id", clientID)
}

func (s *MySQLStore) ListProjectsByManager(ctx context.Context, managerID uint64) ([]*model.Project, error) {
	return s.queryProjects(ctx,
		"SELECT "+projectCols+" FROM projects WHERE manager_id=? ORDER BY id", managerID)
}

func (s *MySQLStore) UpdateProject(ctx context.Context, id uint64, upd ProjectUpdate) (*model.Project, error) {
	var c setClause
	if upd.Name != nil {
		c.add("name", *upd.Name)
	}
	if upd.Status != nil {
		c.add("status", *upd.Status)
	}
	if upd.Progress != nil {
		c.add("progress", clampProgress(*upd.Progress))
	}
	if upd.ManagerID != nil {
		c.add("manager_id", *upd.ManagerID)
	}
	if upd.StartDate != nil {
		c.add("start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		c.add("end_date", *upd.EndDate)
	}
	if !c.empty() {
		q, args := c.sql("projects", "id=?", id)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetProject(ctx, id)
}

// ----- project phases -----

const phaseCols = "id, project_id, name, status, sort_order, deadline, created_at"

func scanPhase(row interface{ Scan(...any) error }) (*model.ProjectPhase, error) {
	var (
		ph       model.ProjectPhase
		deadline sql.NullTime
	)
	err := row.Scan(&ph.ID, &ph.ProjectID, &ph.Name, &ph.Status, &ph.SortOrder,
		&deadline, &ph.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ph.Deadline = fromNullTime(deadline)
	return &ph, nil
}

// projectExists guards inserts of child rows so that both backends
// report ErrNotFound for a missing parent instead of an opaque
// constraint error.
func (s *MySQLStore) projectExists(ctx context.Context, id uint64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM projects WHERE id=?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *MySQLStore) CreateProjectPhase(ctx context.Context, ph *model.ProjectPhase) error {
	if err := s.projectExists(ctx, ph.ProjectID); err != nil {
		return err
	}
	if ph.Status == "" {
		ph.Status = model.PhasePending
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO project_phases (project_id, name, status, sort_order, deadline) VALUES (?,?,?,?,?)",
		ph.ProjectID, ph.Name, ph.Status, ph.SortOrder, nullTime(ph.Deadline))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanPhase(s.db.QueryRowContext(ctx,
		"SELECT "+phaseCols+" FROM project_phases WHERE id=?", id))
	if err != nil {
		return err
	}
	*ph = *got
	return nil
}

func (s *MySQLStore) ListProjectPhases(ctx context.Context, projectID uint64) ([]*model.ProjectPhase, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+phaseCols+" FROM project_phases WHERE project_id=? ORDER BY sort_order, id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.ProjectPhase{}
	for rows.Next() {
		ph, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

// ----- project files -----

const fileCols = "id, project_id, name, path, size, uploaded_by_id, created_at"

func scanFile(row interface{ Scan(...any) error }) (*model.ProjectFile, error) {
	var f model.ProjectFile
	err := row.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Path, &f.Size,
		&f.UploadedByID, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *MySQLStore) CreateProjectFile(ctx context.Context, f *model.ProjectFile) error {
	if err := s.projectExists(ctx, f.ProjectID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO project_files (project_id, name, path, size, uploaded_by_id) VALUES (?,?,?,?,?)",
		f.ProjectID, f.Name, f.Path, f.Size, f.UploadedByID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanFile(s.db.QueryRowContext(ctx,
		"SELECT "+fileCols+" FROM project_files WHERE id=?", id))
	if err != nil {
		return err
	}
	*f = *got
	return nil
}

func (s *MySQLStore) ListProjectFiles(ctx context.Context, projectID uint64) ([]*model.ProjectFile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+fileCols+" FROM project_files WHERE project_id=? ORDER BY id", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.ProjectFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/client-portal/internal/model"
)

const taskCols = "id, title, status, priority, project_id, created_by_id, assigned_to_id, comment_count, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*model.Task, error) {
	var (
		t        model.Task
		assignee sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.ProjectID,
		&t.CreatedByID, &assignee, &t.CommentCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.AssignedToID = fromNullU64(assignee)
	return &t, nil
}

func (s *MySQLStore) CreateTask(ctx context.Context, t *model.Task) error {
	if err := s.projectExists(ctx, t.ProjectID); err != nil {
		return err
	}
	taskDefaults(t)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks (title, status, priority, project_id, created_by_id, assigned_to_id) VALUES (?,?,?,?,?,?)",
		t.Title, t.Status, t.Priority, t.ProjectID, t.CreatedByID, nullU64(t.AssignedToID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanTask(s.db.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id=?", id))
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

func (s *MySQLStore) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	return scanTask(s.db.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id=?", id))
}

func (s *MySQLStore) queryTasks(ctx context.Context, q string, args ...any) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListTasksByProject(ctx context.Context, projectID uint64) ([]*model.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE project_id=? ORDER BY id", projectID)
}

func (s *MySQLStore) ListTasksByProjects(ctx context.Context, projectIDs []uint64) ([]*model.Task, error) {
	if len(projectIDs) == 0 {
		return []*model.Task{}, nil
	}
	q := "SELECT " + taskCols + " FROM tasks WHERE project_id IN (" +
		placeholders(len(projectIDs)) + ") ORDER BY id"
	return s.queryTasks(ctx, q, idArgs(projectIDs)...)
}

func (s *MySQLStore) UpdateTask(ctx context.Context, id uint64, upd TaskUpdate) (*model.Task, error) {
	var c setClause
	if upd.Title != nil {
		c.add("title", *upd.Title)
	}
	if upd.Status != nil {
		c.add("status", *upd.Status)
	}
	if upd.Priority != nil {
		c.add("priority", *upd.Priority)
	}
	if upd.AssignedToID != nil {
		c.add("assigned_to_id", *upd.AssignedToID)
	}
	if !c.empty() {
		q, args := c.sql("tasks", "id=?", id)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetTask(ctx, id)
}

// CreateTaskComment inserts the comment and bumps the parent task's
// comment_count in one transaction. A missing task rolls the whole
// operation back with ErrNotFound.
func (s *MySQLStore) CreateTaskComment(ctx context.Context, cm *model.TaskComment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE tasks SET comment_count=comment_count+1 WHERE id=?", cm.TaskID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	res, err = tx.ExecContext(ctx,
		"INSERT INTO task_comments (task_id, user_id, content) VALUES (?,?,?)",
		cm.TaskID, cm.UserID, cm.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cm.ID = uint64(id)
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM task_comments WHERE id=?", id).Scan(&cm.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *MySQLStore) ListTaskComments(ctx context.Context, taskID uint64) ([]*model.TaskComment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, task_id, user_id, content, created_at FROM task_comments WHERE task_id=? ORDER BY created_at, id",
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.TaskComment{}
	for rows.Next() {
		var cm model.TaskComment
		if err := rows.Scan(&cm.ID, &cm.TaskID, &cm.UserID, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &cm)
	}
	return out, rows.Err()
}

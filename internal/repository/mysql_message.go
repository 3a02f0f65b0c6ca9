package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/client-portal/internal/model"
)

const messageCols = "id, sender_id, receiver_id, project_id, content, is_read, created_at"

func scanMessage(row interface{ Scan(...any) error }) (*model.Message, error) {
	var (
		m       model.Message
		project sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &project, &m.Content,
		&m.IsRead, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.ProjectID = fromNullU64(project)
	return &m, nil
}

func (s *MySQLStore) CreateMessage(ctx context.Context, m *model.Message) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (sender_id, receiver_id, project_id, content) VALUES (?,?,?,?)",
		m.SenderID, m.ReceiverID, nullU64(m.ProjectID), m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanMessage(s.db.QueryRowContext(ctx,
		"SELECT "+messageCols+" FROM messages WHERE id=?", id))
	if err != nil {
		return err
	}
	*m = *got
	return nil
}

func (s *MySQLStore) GetMessage(ctx context.Context, id uint64) (*model.Message, error) {
	return scanMessage(s.db.QueryRowContext(ctx,
		"SELECT "+messageCols+" FROM messages WHERE id=?", id))
}

func (s *MySQLStore) queryMessages(ctx context.Context, q string, args ...any) ([]*model.Message, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListMessagesBetween returns the conversation between two users in
// chronological order, regardless of direction.
func (s *MySQLStore) ListMessagesBetween(ctx context.Context, userA, userB uint64) ([]*model.Message, error) {
	return s.queryMessages(ctx,
		"SELECT "+messageCols+" FROM messages WHERE (sender_id=? AND receiver_id=?) OR (sender_id=? AND receiver_id=?) ORDER BY created_at, id",
		userA, userB, userB, userA)
}

func (s *MySQLStore) ListMessagesByProject(ctx context.Context, projectID uint64) ([]*model.Message, error) {
	return s.queryMessages(ctx,
		"SELECT "+messageCols+" FROM messages WHERE project_id=? ORDER BY created_at, id", projectID)
}

// MarkMessageRead flips is_read to true. The statement only ever sets
// true, so a repeated call cannot revert the flag.
func (s *MySQLStore) MarkMessageRead(ctx context.Context, id uint64) (*model.Message, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE messages SET is_read=TRUE WHERE id=?", id)
	if err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for an already-read
	// one, so existence is checked by the read-back.
	if _, err := res.RowsAffected(); err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, id)
}

// ----- activities -----

const activityCols = "id, user_id, action_type, resource_type, resource_id, project_id, description, metadata, created_at"

func scanActivity(row interface{ Scan(...any) error }) (*model.Activity, error) {
	var (
		a       model.Activity
		project sql.NullInt64
		meta    sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.ActionType, &a.ResourceType, &a.ResourceID,
		&project, &a.Description, &meta, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.ProjectID = fromNullU64(project)
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &a.Metadata); err != nil {
			return nil, fmt.Errorf("decode activity metadata: %w", err)
		}
	}
	return &a, nil
}

func (s *MySQLStore) CreateActivity(ctx context.Context, a *model.Activity) error {
	var meta sql.NullString
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO activities (user_id, action_type, resource_type, resource_id, project_id, description, metadata) VALUES (?,?,?,?,?,?,?)",
		a.UserID, a.ActionType, a.ResourceType, a.ResourceID, nullU64(a.ProjectID),
		a.Description, meta)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanActivity(s.db.QueryRowContext(ctx,
		"SELECT "+activityCols+" FROM activities WHERE id=?", id))
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

func (s *MySQLStore) queryActivities(ctx context.Context, q string, args ...any) ([]*model.Activity, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListActivities(ctx context.Context, limit int) ([]*model.Activity, error) {
	q := "SELECT " + activityCols + " FROM activities ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		return s.queryActivities(ctx, q+" LIMIT ?", limit)
	}
	return s.queryActivities(ctx, q)
}

func (s *MySQLStore) ListActivitiesByProjects(ctx context.Context, projectIDs []uint64, limit int) ([]*model.Activity, error) {
	if len(projectIDs) == 0 {
		return []*model.Activity{}, nil
	}
	q := "SELECT " + activityCols + " FROM activities WHERE project_id IN (" +
		placeholders(len(projectIDs)) + ") ORDER BY created_at DESC, id DESC"
	args := idArgs(projectIDs)
	if limit > 0 {
		return s.queryActivities(ctx, q+" LIMIT ?", append(args, limit)...)
	}
	return s.queryActivities(ctx, q, args...)
}

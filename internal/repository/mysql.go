package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/client-portal/internal/model"
)

// MySQLStore is the durable backend. Every method mirrors the
// MemoryStore behavior exactly; the tests in memory_test.go are the
// authority on what "exactly" means.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore wraps an open database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying handle for transactions spanning
// multiple statements.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// isDupKey reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDupKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// nullU64 converts an optional id for insertion.
func nullU64(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullU64(v sql.NullInt64) *uint64 {
	if !v.Valid {
		return nil
	}
	u := uint64(v.Int64)
	return &u
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// setClause accumulates a dynamic UPDATE statement.
type setClause struct {
	cols []string
	args []any
}

func (c *setClause) add(col string, arg any) {
	c.cols = append(c.cols, col+"=?")
	c.args = append(c.args, arg)
}

func (c *setClause) empty() bool { return len(c.cols) == 0 }

func (c *setClause) sql(table, where string, whereArgs ...any) (string, []any) {
	q := "UPDATE " + table + " SET " + strings.Join(c.cols, ", ") + " WHERE " + where
	return q, append(c.args, whereArgs...)
}

// placeholders returns "?,?,..." for n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// ----- users -----

const userCols = "id, email, password_hash, role, name, avatar_initials, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name,
		&u.AvatarInitials, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MySQLStore) CreateUser(ctx context.Context, u *model.User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, name, avatar_initials) VALUES (?,?,?,?,?)",
		email, u.PasswordHash, u.Role, u.Name, u.AvatarInitials)
	if err != nil {
		if isDupKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=?", id))
	if err != nil {
		return err
	}
	*u = *got
	return nil
}

func (s *MySQLStore) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=?", id))
}

func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=?", email))
}

func (s *MySQLStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userCols+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *MySQLStore) UpdateUser(ctx context.Context, id uint64, upd UserUpdate) (*model.User, error) {
	var c setClause
	if upd.Email != nil {
		c.add("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
	}
	if upd.Name != nil {
		c.add("name", *upd.Name)
	}
	if upd.Role != nil {
		c.add("role", *upd.Role)
	}
	if upd.PasswordHash != nil {
		c.add("password_hash", *upd.PasswordHash)
	}
	if upd.AvatarInitials != nil {
		c.add("avatar_initials", *upd.AvatarInitials)
	}
	if !c.empty() {
		q, args := c.sql("users", "id=?", id)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if isDupKey(err) {
				return nil, ErrEmailExists
			}
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

func (s *MySQLStore) DeleteUser(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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
	return nil
}

func (s *MySQLStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// ----- sessions -----

func (s *MySQLStore) CreateSession(ctx context.Context, sess *model.Session) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token_hash, expires_at) VALUES (?,?,?)",
		sess.UserID, sess.TokenHash, sess.ExpiresAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sess.ID = uint64(id)
	return s.db.QueryRowContext(ctx,
		"SELECT created_at FROM sessions WHERE id=?", id).Scan(&sess.CreatedAt)
}

func (s *MySQLStore) GetSessionByTokenHash(ctx context.Context, hash string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, created_at FROM sessions WHERE token_hash=? LIMIT 1",
		hash).Scan(&sess.ID, &sess.UserID, &sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MySQLStore) DeleteSessionByTokenHash(ctx context.Context, hash string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash=?", hash)
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
	return nil
}

func (s *MySQLStore) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

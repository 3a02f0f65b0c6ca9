package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/client-portal/internal/model"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLStore(db), mock
}

func userRows(u *model.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "role", "name", "avatar_initials", "created_at", "updated_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, u.Role, u.Name, u.AvatarInitials, u.CreatedAt, u.UpdatedAt)
}

func TestMySQLGetUser(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()
	want := &model.User{ID: 1, Email: "a@example.com", PasswordHash: "h", Role: model.RoleClient,
		Name: "A", AvatarInitials: "A", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE id=?")).
		WithArgs(uint64(1)).
		WillReturnRows(userRows(want))

	got, err := s.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLGetUserNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+userCols+" FROM users WHERE id=?")).
		WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (email, password_hash, role, name, avatar_initials) VALUES (?,?,?,?,?)")).
		WithArgs("dup@example.com", "h", model.RoleClient, "Dup", "D").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'dup@example.com' for key 'users.email'"))

	err := s.CreateUser(context.Background(), &model.User{
		Email: "Dup@Example.com", PasswordHash: "h", Name: "Dup", AvatarInitials: "D",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDeleteSessionNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE token_hash=?")).
		WithArgs("deadbeef").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteSessionByTokenHash(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateTaskCommentTx(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET comment_count=comment_count+1 WHERE id=?")).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO task_comments (task_id, user_id, content) VALUES (?,?,?)")).
		WithArgs(uint64(5), uint64(2), "nice").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM task_comments WHERE id=?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	cm := &model.TaskComment{TaskID: 5, UserID: 2, Content: "nice"}
	require.NoError(t, s.CreateTaskComment(context.Background(), cm))
	assert.Equal(t, uint64(9), cm.ID)
	assert.Equal(t, created, cm.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCreateTaskCommentMissingTask(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET comment_count=comment_count+1 WHERE id=?")).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.CreateTaskComment(context.Background(), &model.TaskComment{TaskID: 404, UserID: 1, Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLMarkMessageRead(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET is_read=TRUE WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+messageCols+" FROM messages WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "sender_id", "receiver_id", "project_id", "content", "is_read", "created_at",
		}).AddRow(3, 1, 2, nil, "hello", true, created))

	m, err := s.MarkMessageRead(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, m.IsRead)
	assert.Nil(t, m.ProjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLListTasksByProjectsEmptySet(t *testing.T) {
	s, _ := newMockStore(t)
	// An empty scope never touches the database.
	tasks, err := s.ListTasksByProjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema when it does not exist yet. Statements
// are idempotent so running them on every start is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'client',
			name VARCHAR(255) NOT NULL DEFAULT '',
			avatar_initials VARCHAR(8) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_sessions_user (user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'planning',
			progress INT NOT NULL DEFAULT 0,
			client_id BIGINT UNSIGNED NOT NULL,
			manager_id BIGINT UNSIGNED NULL,
			start_date DATETIME NULL,
			end_date DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_projects_client (client_id),
			INDEX idx_projects_manager (manager_id)
		)`,
		`CREATE TABLE IF NOT EXISTS project_phases (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			project_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			sort_order INT NOT NULL DEFAULT 0,
			deadline DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_phases_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			title VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'todo',
			priority VARCHAR(16) NOT NULL DEFAULT 'medium',
			project_id BIGINT UNSIGNED NOT NULL,
			created_by_id BIGINT UNSIGNED NOT NULL,
			assigned_to_id BIGINT UNSIGNED NULL,
			comment_count INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_tasks_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS task_comments (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			task_id BIGINT UNSIGNED NOT NULL,
			user_id BIGINT UNSIGNED NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_comments_task (task_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			sender_id BIGINT UNSIGNED NOT NULL,
			receiver_id BIGINT UNSIGNED NOT NULL,
			project_id BIGINT UNSIGNED NULL,
			content TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_messages_pair (sender_id, receiver_id),
			INDEX idx_messages_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			user_id BIGINT UNSIGNED NOT NULL,
			action_type VARCHAR(32) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id BIGINT UNSIGNED NOT NULL,
			project_id BIGINT UNSIGNED NULL,
			description VARCHAR(512) NOT NULL DEFAULT '',
			metadata TEXT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_activities_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS project_files (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			project_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			path VARCHAR(1024) NOT NULL,
			size BIGINT NOT NULL DEFAULT 0,
			uploaded_by_id BIGINT UNSIGNED NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_files_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS finance_documents (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			client_id BIGINT UNSIGNED NOT NULL,
			project_id BIGINT UNSIGNED NULL,
			type VARCHAR(16) NOT NULL,
			amount_cents BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			due_date DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_finance_client (client_id),
			INDEX idx_finance_project (project_id)
		)`,
		`CREATE TABLE IF NOT EXISTS support_tickets (
			id BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
			client_id BIGINT UNSIGNED NOT NULL,
			project_id BIGINT UNSIGNED NULL,
			subject VARCHAR(255) NOT NULL,
			status VARCHAR(16) NOT NULL DEFAULT 'open',
			priority VARCHAR(16) NOT NULL DEFAULT 'medium',
			assigned_to_id BIGINT UNSIGNED NULL,
			closed_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			INDEX idx_tickets_client (client_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

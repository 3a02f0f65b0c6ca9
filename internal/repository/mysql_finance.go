package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/client-portal/internal/model"
)

const financeCols = "id, client_id, project_id, type, amount_cents, status, due_date, created_at, updated_at"

func scanFinance(row interface{ Scan(...any) error }) (*model.FinanceDocument, error) {
	var (
		d       model.FinanceDocument
		project sql.NullInt64
		due     sql.NullTime
	)
	err := row.Scan(&d.ID, &d.ClientID, &project, &d.Type, &d.AmountCents,
		&d.Status, &due, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.ProjectID = fromNullU64(project)
	d.DueDate = fromNullTime(due)
	return &d, nil
}

func (s *MySQLStore) CreateFinanceDocument(ctx context.Context, d *model.FinanceDocument) error {
	if d.Status == "" {
		d.Status = model.FinancePending
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO finance_documents (client_id, project_id, type, amount_cents, status, due_date) VALUES (?,?,?,?,?,?)",
		d.ClientID, nullU64(d.ProjectID), d.Type, d.AmountCents, d.Status, nullTime(d.DueDate))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanFinance(s.db.QueryRowContext(ctx,
		"SELECT "+financeCols+" FROM finance_documents WHERE id=?", id))
	if err != nil {
		return err
	}
	*d = *got
	return nil
}

func (s *MySQLStore) GetFinanceDocument(ctx context.Context, id uint64) (*model.FinanceDocument, error) {
	return scanFinance(s.db.QueryRowContext(ctx,
		"SELECT "+financeCols+" FROM finance_documents WHERE id=?", id))
}

func (s *MySQLStore) queryFinance(ctx context.Context, q string, args ...any) ([]*model.FinanceDocument, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.FinanceDocument{}
	for rows.Next() {
		d, err := scanFinance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListFinanceDocuments(ctx context.Context) ([]*model.FinanceDocument, error) {
	return s.queryFinance(ctx, "SELECT "+financeCols+" FROM finance_documents ORDER BY id")
}

func (s *MySQLStore) ListFinanceDocumentsByClient(ctx context.Context, clientID uint64) ([]*model.FinanceDocument, error) {
	return s.queryFinance(ctx,
		"SELECT "+financeCols+" FROM finance_documents WHERE client_id=? ORDER BY id", clientID)
}

func (s *MySQLStore) ListFinanceDocumentsByProjects(ctx context.Context, projectIDs []uint64) ([]*model.FinanceDocument, error) {
	if len(projectIDs) == 0 {
		return []*model.FinanceDocument{}, nil
	}
	q := "SELECT " + financeCols + " FROM finance_documents WHERE project_id IN (" +
		placeholders(len(projectIDs)) + ") ORDER BY id"
	return s.queryFinance(ctx, q, idArgs(projectIDs)...)
}

func (s *MySQLStore) UpdateFinanceDocument(ctx context.Context, id uint64, upd FinanceDocumentUpdate) (*model.FinanceDocument, error) {
	var c setClause
	if upd.Status != nil {
		c.add("status", *upd.Status)
	}
	if upd.DueDate != nil {
		c.add("due_date", *upd.DueDate)
	}
	if !c.empty() {
		q, args := c.sql("finance_documents", "id=?", id)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetFinanceDocument(ctx, id)
}

// ----- support tickets -----

const ticketCols = "id, client_id, project_id, subject, status, priority, assigned_to_id, closed_at, created_at, updated_at"

func scanTicket(row interface{ Scan(...any) error }) (*model.SupportTicket, error) {
	var (
		t        model.SupportTicket
		project  sql.NullInt64
		assignee sql.NullInt64
		closed   sql.NullTime
	)
	err := row.Scan(&t.ID, &t.ClientID, &project, &t.Subject, &t.Status,
		&t.Priority, &assignee, &closed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.ProjectID = fromNullU64(project)
	t.AssignedToID = fromNullU64(assignee)
	t.ClosedAt = fromNullTime(closed)
	return &t, nil
}

func (s *MySQLStore) CreateSupportTicket(ctx context.Context, t *model.SupportTicket) error {
	if t.Status == "" {
		t.Status = model.TicketOpen
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO support_tickets (client_id, project_id, subject, status, priority, assigned_to_id) VALUES (?,?,?,?,?,?)",
		t.ClientID, nullU64(t.ProjectID), t.Subject, t.Status, t.Priority, nullU64(t.AssignedToID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := scanTicket(s.db.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM support_tickets WHERE id=?", id))
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

func (s *MySQLStore) GetSupportTicket(ctx context.Context, id uint64) (*model.SupportTicket, error) {
	return scanTicket(s.db.QueryRowContext(ctx,
		"SELECT "+ticketCols+" FROM support_tickets WHERE id=?", id))
}

func (s *MySQLStore) queryTickets(ctx context.Context, q string, args ...any) ([]*model.SupportTicket, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListSupportTickets(ctx context.Context) ([]*model.SupportTicket, error) {
	return s.queryTickets(ctx, "SELECT "+ticketCols+" FROM support_tickets ORDER BY id")
}

func (s *MySQLStore) ListSupportTicketsByClient(ctx context.Context, clientID uint64) ([]*model.SupportTicket, error) {
	return s.queryTickets(ctx,
		"SELECT "+ticketCols+" FROM support_tickets WHERE client_id=? ORDER BY id", clientID)
}

func (s *MySQLStore) UpdateSupportTicket(ctx context.Context, id uint64, upd SupportTicketUpdate) (*model.SupportTicket, error) {
	var c setClause
	if upd.Status != nil {
		c.add("status", *upd.Status)
	}
	if upd.Priority != nil {
		c.add("priority", *upd.Priority)
	}
	if upd.AssignedToID != nil {
		c.add("assigned_to_id", *upd.AssignedToID)
	}
	if upd.ClosedAt != nil {
		c.add("closed_at", *upd.ClosedAt)
	}
	if !c.empty() {
		q, args := c.sql("support_tickets", "id=?", id)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return s.GetSupportTicket(ctx, id)
}

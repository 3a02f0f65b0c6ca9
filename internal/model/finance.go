package model

import "time"

// Finance document statuses and types.
const (
	FinancePending = "pending"
	FinancePaid    = "paid"
	FinanceOverdue = "overdue"

	FinanceInvoice  = "invoice"
	FinanceQuote    = "quote"
	FinanceContract = "contract"
)

// FinanceDocument is an invoice, quote or contract issued to a client,
// optionally tied to a project. Amount is stored in cents.
type FinanceDocument struct {
	ID          uint64     `json:"id"`
	ClientID    uint64     `json:"clientId"`
	ProjectID   *uint64    `json:"projectId,omitempty"`
	Type        string     `json:"type"`
	AmountCents int64      `json:"amountCents"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

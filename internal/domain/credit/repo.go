package credit

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
)

// DebtFilter narrows debt lists.
type DebtFilter struct {
	CustomerID *id.ID
	Status     Status

	// Overdue filters on due_date < Today AND status != paid.
	Overdue *bool
	Today   time.Time
	filter.Page
}

// Repository persists debts and their payments.
type Repository interface {
	Create(ctx context.Context, d *Debt) error

	// Update writes paid_amount, paid_date, status, notes and updated_at.
	Update(ctx context.Context, d *Debt) error

	GetByID(ctx context.Context, ownerID, debtID id.ID) (*Debt, error)

	// GetForUpdate retrieves the debt with a row lock.
	GetForUpdate(ctx context.Context, ownerID, debtID id.ID) (*Debt, error)

	// ListBySaleForUpdate locks every debt opened by a sale.
	ListBySaleForUpdate(ctx context.Context, ownerID, saleID id.ID) ([]*Debt, error)

	List(ctx context.Context, ownerID id.ID, f DebtFilter) (filter.ListResult[*Debt], error)

	AddPayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, ownerID, debtID id.ID) ([]*Payment, error)

	// MarkOverdue flips pending, unpaid debts due before today to overdue across all
	// owners and returns how many changed.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

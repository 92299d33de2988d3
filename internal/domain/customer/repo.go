package customer

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
)

// Filter narrows customer lists.
type Filter struct {
	// Search matches name, phone, email or company
	Search       string
	CustomerType Type
	IsActive     *bool
	filter.Page
}

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error

	// UpdateStatistics writes only the cached statistic columns.
	UpdateStatistics(ctx context.Context, c *Customer) error

	// Delete removes the customer with their sales, purchases and debts.
	Delete(ctx context.Context, ownerID, customerID id.ID) error

	GetByID(ctx context.Context, ownerID, customerID id.ID) (*Customer, error)

	// GetForUpdate retrieves the customer with a row lock.
	GetForUpdate(ctx context.Context, ownerID, customerID id.ID) (*Customer, error)

	// FindByPhone looks a normalized phone up across all owners.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	List(ctx context.Context, ownerID id.ID, f Filter) (filter.ListResult[*Customer], error)

	// SalesSummary aggregates completed sales of the customer.
	SalesSummary(ctx context.Context, ownerID, customerID id.ID) (SalesSummary, error)

	// DebtSummary sums amount − paid_amount over debts that are neither paid nor cancelled.
	DebtSummary(ctx context.Context, ownerID, customerID id.ID) (DebtSummary, error)
}

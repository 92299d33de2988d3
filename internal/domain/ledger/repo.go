package ledger

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
)

// SaleFilter narrows sale lists.
type SaleFilter struct {
	filter.DateRange
	ProductID     *id.ID
	CustomerID    *id.ID
	Status        SaleStatus
	PaymentMethod PaymentMethod
	filter.Page
}

// PurchaseFilter narrows purchase lists.
type PurchaseFilter struct {
	filter.DateRange
	ProductID  *id.ID
	SupplierID *id.ID
	Status     PurchaseStatus
	filter.Page
}

// SaleRepository persists sales.
type SaleRepository interface {
	Create(ctx context.Context, s *Sale) error

	// UpdateStatus writes status, paid_amount and updated_at.
	UpdateStatus(ctx context.Context, s *Sale) error

	// Delete removes the sale and its debts.
	Delete(ctx context.Context, ownerID, saleID id.ID) error

	GetByID(ctx context.Context, ownerID, saleID id.ID) (*Sale, error)

	// GetForUpdate retrieves the sale with a row lock.
	GetForUpdate(ctx context.Context, ownerID, saleID id.ID) (*Sale, error)

	List(ctx context.Context, ownerID id.ID, f SaleFilter) (filter.ListResult[*Sale], error)
}

// PurchaseRepository persists purchases.
type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error

	// UpdateStatus writes status, received_at and updated_at.
	UpdateStatus(ctx context.Context, p *Purchase) error

	Delete(ctx context.Context, ownerID, purchaseID id.ID) error
	GetByID(ctx context.Context, ownerID, purchaseID id.ID) (*Purchase, error)

	// GetForUpdate retrieves the purchase with a row lock.
	GetForUpdate(ctx context.Context, ownerID, purchaseID id.ID) (*Purchase, error)

	List(ctx context.Context, ownerID id.ID, f PurchaseFilter) (filter.ListResult[*Purchase], error)
}

// Package document_repo provides PostgreSQL implementations of the sale,
// purchase and debt repositories.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

// SaleRepo implements ledger.SaleRepository.
type SaleRepo struct {
	postgres.BaseRepo[ledger.Sale]
}

var _ ledger.SaleRepository = (*SaleRepo)(nil)

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseRepo: postgres.NewBaseRepo[ledger.Sale](txManager, "sales", "sale",
			"sale_date", "total", "quantity", "invoice_number", "created_at"),
	}
}

// Create inserts the sale. A clash on sales_owner_invoice_key surfaces as
// CONFLICT so the caller retries with a fresh number.
func (r *SaleRepo) Create(ctx context.Context, s *ledger.Sale) error {
	return r.Insert(ctx, s)
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, s *ledger.Sale) error {
	return r.UpdateColumns(ctx, s.ID, s.OwnerID, s, []string{"status", "paid_amount", "updated_at"})
}

// Delete removes the sale; its debts go with it through the foreign key.
func (r *SaleRepo) Delete(ctx context.Context, ownerID, saleID id.ID) error {
	q := r.Builder().
		Delete(r.Table).
		Where(squirrel.Eq{"id": saleID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, saleID)
}

func (r *SaleRepo) GetByID(ctx context.Context, ownerID, saleID id.ID) (*ledger.Sale, error) {
	return r.FindByID(ctx, ownerID, saleID)
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, ownerID, saleID id.ID) (*ledger.Sale, error) {
	return r.FindForUpdate(ctx, ownerID, saleID)
}

func (r *SaleRepo) List(ctx context.Context, ownerID id.ID, f ledger.SaleFilter) (filter.ListResult[*ledger.Sale], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *SaleRepo) applyFilter(q squirrel.SelectBuilder, f ledger.SaleFilter) squirrel.SelectBuilder {
	q = dateRange(q, "sale_date", f.DateRange)
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.PaymentMethod != "" {
		q = q.Where(squirrel.Eq{"payment_method": f.PaymentMethod})
	}
	return q
}

// dateRange applies the half-open [From, To) bounds of r to column.
func dateRange(q squirrel.SelectBuilder, column string, r filter.DateRange) squirrel.SelectBuilder {
	if r.From != nil {
		q = q.Where(squirrel.GtOrEq{column: *r.From})
	}
	if r.To != nil {
		q = q.Where(squirrel.Lt{column: *r.To})
	}
	return q
}

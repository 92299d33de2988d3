package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

// PurchaseRepo implements ledger.PurchaseRepository.
type PurchaseRepo struct {
	postgres.BaseRepo[ledger.Purchase]
}

var _ ledger.PurchaseRepository = (*PurchaseRepo)(nil)

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseRepo: postgres.NewBaseRepo[ledger.Purchase](txManager, "purchases", "purchase",
			"purchase_date", "total", "quantity", "received_at", "created_at"),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *ledger.Purchase) error {
	return r.Insert(ctx, p)
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, p *ledger.Purchase) error {
	return r.UpdateColumns(ctx, p.ID, p.OwnerID, p, []string{"status", "received_at", "updated_at"})
}

func (r *PurchaseRepo) Delete(ctx context.Context, ownerID, purchaseID id.ID) error {
	q := r.Builder().
		Delete(r.Table).
		Where(squirrel.Eq{"id": purchaseID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, purchaseID)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, ownerID, purchaseID id.ID) (*ledger.Purchase, error) {
	return r.FindByID(ctx, ownerID, purchaseID)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, ownerID, purchaseID id.ID) (*ledger.Purchase, error) {
	return r.FindForUpdate(ctx, ownerID, purchaseID)
}

func (r *PurchaseRepo) List(ctx context.Context, ownerID id.ID, f ledger.PurchaseFilter) (filter.ListResult[*ledger.Purchase], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *PurchaseRepo) applyFilter(q squirrel.SelectBuilder, f ledger.PurchaseFilter) squirrel.SelectBuilder {
	q = dateRange(q, "purchase_date", f.DateRange)
	if f.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *f.SupplierID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	return q
}

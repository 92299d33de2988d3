package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/filter"
	"shopledger/internal/infrastructure/storage/postgres"
)

// DebtRepo implements credit.Repository. Payments live in debt_payments.
type DebtRepo struct {
	postgres.BaseRepo[credit.Debt]
	payments postgres.BaseRepo[credit.Payment]
}

var _ credit.Repository = (*DebtRepo)(nil)

// NewDebtRepo creates a new debt repository.
func NewDebtRepo(txManager *postgres.TxManager) *DebtRepo {
	return &DebtRepo{
		BaseRepo: postgres.NewBaseRepo[credit.Debt](txManager, "debts", "debt",
			"due_date", "amount", "paid_amount", "created_at"),
		payments: postgres.NewBaseRepo[credit.Payment](txManager, "debt_payments", "payment"),
	}
}

func (r *DebtRepo) Create(ctx context.Context, d *credit.Debt) error {
	return r.Insert(ctx, d)
}

func (r *DebtRepo) Update(ctx context.Context, d *credit.Debt) error {
	return r.UpdateColumns(ctx, d.ID, d.OwnerID, d,
		[]string{"paid_amount", "paid_date", "status", "notes", "updated_at"})
}

func (r *DebtRepo) GetByID(ctx context.Context, ownerID, debtID id.ID) (*credit.Debt, error) {
	return r.FindByID(ctx, ownerID, debtID)
}

func (r *DebtRepo) GetForUpdate(ctx context.Context, ownerID, debtID id.ID) (*credit.Debt, error) {
	return r.FindForUpdate(ctx, ownerID, debtID)
}

func (r *DebtRepo) ListBySaleForUpdate(ctx context.Context, ownerID, saleID id.ID) ([]*credit.Debt, error) {
	q := r.Select(ownerID).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("created_at ASC", "id ASC").
		Suffix("FOR UPDATE")
	return r.SelectAll(ctx, q)
}

func (r *DebtRepo) List(ctx context.Context, ownerID id.ID, f credit.DebtFilter) (filter.ListResult[*credit.Debt], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *DebtRepo) applyFilter(q squirrel.SelectBuilder, f credit.DebtFilter) squirrel.SelectBuilder {
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.Overdue != nil {
		overdue := squirrel.And{
			squirrel.Lt{"due_date": f.Today},
			squirrel.NotEq{"status": credit.StatusPaid},
		}
		if *f.Overdue {
			q = q.Where(overdue)
		} else {
			q = q.Where(squirrel.Or{
				squirrel.GtOrEq{"due_date": f.Today},
				squirrel.Eq{"status": credit.StatusPaid},
			})
		}
	}
	return q
}

func (r *DebtRepo) AddPayment(ctx context.Context, p *credit.Payment) error {
	return r.payments.Insert(ctx, p)
}

func (r *DebtRepo) ListPayments(ctx context.Context, ownerID, debtID id.ID) ([]*credit.Payment, error) {
	q := r.payments.Select(ownerID).
		Where(squirrel.Eq{"debt_id": debtID}).
		OrderBy("paid_at ASC", "id ASC")
	return r.payments.SelectAll(ctx, q)
}

// MarkOverdue spans every owner; the worker runs it once per tick.
func (r *DebtRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	sql, args, err := r.Builder().
		Update(r.Table).
		Set("status", credit.StatusOverdue).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": credit.StatusPending, "paid_amount": 0}).
		Where(squirrel.Lt{"due_date": today}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build mark overdue: %w", err)
	}
	tag, err := r.Txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(fmt.Errorf("mark overdue: %w", err), r.Entity)
	}
	return tag.RowsAffected(), nil
}

package memory

import (
	"context"
	"slices"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/filter"
)

// DebtRepo implements credit.Repository.
type DebtRepo struct {
	store *Store
}

// NewDebtRepo creates a debt repository.
func NewDebtRepo(store *Store) *DebtRepo {
	return &DebtRepo{store: store}
}

var debtOrder = map[string]func(a, b *credit.Debt) int{
	"due_date":    func(a, b *credit.Debt) int { return cmpTime(a.DueDate, b.DueDate) },
	"amount":      func(a, b *credit.Debt) int { return a.Amount.Cmp(b.Amount) },
	"paid_amount": func(a, b *credit.Debt) int { return a.PaidAmount.Cmp(b.PaidAmount) },
	"created_at":  func(a, b *credit.Debt) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

func (r *DebtRepo) Create(ctx context.Context, d *credit.Debt) error {
	defer r.store.guard(ctx)()
	row := *d
	row.Payments = nil
	r.store.data.debts[d.ID] = row
	return nil
}

func (r *DebtRepo) Update(ctx context.Context, d *credit.Debt) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.debts[d.ID]
	if !ok || cur.OwnerID != d.OwnerID {
		return apperror.NewNotFound("debt", d.ID)
	}
	cur.PaidAmount = d.PaidAmount
	cur.PaidDate = d.PaidDate
	cur.Status = d.Status
	cur.Notes = d.Notes
	cur.UpdatedAt = d.UpdatedAt
	t.debts[d.ID] = cur
	return nil
}

func (r *DebtRepo) GetByID(ctx context.Context, ownerID, debtID id.ID) (*credit.Debt, error) {
	defer r.store.guard(ctx)()
	d, ok := r.store.data.debts[debtID]
	if !ok || d.OwnerID != ownerID {
		return nil, apperror.NewNotFound("debt", debtID)
	}
	return &d, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *DebtRepo) GetForUpdate(ctx context.Context, ownerID, debtID id.ID) (*credit.Debt, error) {
	return r.GetByID(ctx, ownerID, debtID)
}

func (r *DebtRepo) ListBySaleForUpdate(ctx context.Context, ownerID, saleID id.ID) ([]*credit.Debt, error) {
	defer r.store.guard(ctx)()
	var out []*credit.Debt
	for _, d := range r.store.data.debts {
		if d.OwnerID == ownerID && d.SaleID != nil && *d.SaleID == saleID {
			out = append(out, &d)
		}
	}
	sortRows(out, "created_at", debtOrder, func(d *credit.Debt) id.ID { return d.ID })
	return out, nil
}

func (r *DebtRepo) List(ctx context.Context, ownerID id.ID, f credit.DebtFilter) (filter.ListResult[*credit.Debt], error) {
	defer r.store.guard(ctx)()
	var rows []*credit.Debt
	for _, d := range r.store.data.debts {
		if d.OwnerID != ownerID {
			continue
		}
		if f.CustomerID != nil && d.CustomerID != *f.CustomerID {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.Overdue != nil && d.IsOverdue(f.Today) != *f.Overdue {
			continue
		}
		rows = append(rows, &d)
	}
	sortRows(rows, f.OrderBy, debtOrder, func(d *credit.Debt) id.ID { return d.ID })
	return page(rows, f.Page), nil
}

func (r *DebtRepo) AddPayment(ctx context.Context, p *credit.Payment) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	d, ok := t.debts[p.DebtID]
	if !ok || d.OwnerID != p.OwnerID {
		return apperror.NewNotFound("debt", p.DebtID)
	}
	t.payments = append(t.payments, *p)
	return nil
}

func (r *DebtRepo) ListPayments(ctx context.Context, ownerID, debtID id.ID) ([]*credit.Payment, error) {
	defer r.store.guard(ctx)()
	var out []*credit.Payment
	for _, p := range r.store.data.payments {
		if p.OwnerID == ownerID && p.DebtID == debtID {
			out = append(out, &p)
		}
	}
	slices.SortStableFunc(out, func(a, b *credit.Payment) int { return cmpTime(a.PaidAt, b.PaidAt) })
	return out, nil
}

func (r *DebtRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	defer r.store.guard(ctx)()
	t := r.store.data
	now := r.store.now()
	var n int64
	for did, d := range t.debts {
		if !d.ShouldMarkOverdue(today) {
			continue
		}
		d.Status = credit.StatusOverdue
		d.UpdatedAt = now
		t.debts[did] = d
		n++
	}
	return n, nil
}

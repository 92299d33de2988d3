package memory

import (
	"context"
	"slices"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/dashboard"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports"
)

// DashboardRepo implements dashboard.Repository.
type DashboardRepo struct {
	store *Store
}

// NewDashboardRepo creates a dashboard repository.
func NewDashboardRepo(store *Store) *DashboardRepo {
	return &DashboardRepo{store: store}
}

func inDay(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func (r *DashboardRepo) Compute(ctx context.Context, ownerID id.ID, dayStart, dayEnd time.Time) (*dashboard.Stats, error) {
	defer r.store.guard(ctx)()
	t := r.store.data

	st := &dashboard.Stats{
		OwnerID:        ownerID,
		TotalSales:     types.Zero(),
		TotalPurchases: types.Zero(),
		TotalProfit:    types.Zero(),
		TotalDebt:      types.Zero(),
	}
	for _, s := range t.sales {
		if s.OwnerID != ownerID || s.Status != ledger.SaleStatusCompleted || !inDay(s.SaleDate, dayStart, dayEnd) {
			continue
		}
		st.SalesCount++
		st.TotalSales = st.TotalSales.Add(s.Total)
		cost := types.Zero()
		if p, ok := t.products[s.ProductID]; ok {
			cost = p.PurchasePrice
		}
		st.TotalProfit = st.TotalProfit.Add(s.Profit(cost))
	}
	for _, p := range t.purchases {
		if p.OwnerID != ownerID || p.Status != ledger.PurchaseStatusReceived || !inDay(p.PurchaseDate, dayStart, dayEnd) {
			continue
		}
		st.PurchaseCount++
		st.TotalPurchases = st.TotalPurchases.Add(p.Total)
	}
	for _, c := range t.customers {
		if c.OwnerID != ownerID {
			continue
		}
		if c.IsActive {
			st.TotalCustomers++
		}
		if inDay(c.CreatedAt, dayStart, dayEnd) {
			st.NewCustomers++
		}
	}
	for _, p := range t.products {
		if p.OwnerID == ownerID {
			st.TotalProducts++
		}
	}
	for _, d := range t.debts {
		if d.OwnerID == ownerID && d.IsOpen() {
			st.TotalDebt = st.TotalDebt.Add(d.Remaining())
		}
	}
	return st, nil
}

func (r *DashboardRepo) Upsert(ctx context.Context, s *dashboard.Stats) error {
	defer r.store.guard(ctx)()
	r.store.data.snapshots[snapshotKey{owner: s.OwnerID, date: calendar.FormatDate(s.Date)}] = *s
	return nil
}

func (r *DashboardRepo) Get(ctx context.Context, ownerID id.ID, date time.Time) (*dashboard.Stats, error) {
	defer r.store.guard(ctx)()
	key := snapshotKey{owner: ownerID, date: calendar.FormatDate(date)}
	s, ok := r.store.data.snapshots[key]
	if !ok {
		return nil, apperror.NewNotFound("daily statistics", key.date)
	}
	return &s, nil
}

func (r *DashboardRepo) List(ctx context.Context, ownerID id.ID, from, to time.Time) ([]*dashboard.Stats, error) {
	defer r.store.guard(ctx)()
	var out []*dashboard.Stats
	for _, s := range r.store.data.snapshots {
		if s.OwnerID != ownerID || s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		out = append(out, &s)
	}
	slices.SortFunc(out, func(a, b *dashboard.Stats) int { return cmpTime(a.Date, b.Date) })
	return out, nil
}

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	store *Store
}

// NewReportRepo creates a report repository.
func NewReportRepo(store *Store) *ReportRepo {
	return &ReportRepo{store: store}
}

func (r *ReportRepo) SaleRows(ctx context.Context, ownerID id.ID, from, to time.Time, status string) ([]reports.SaleRow, error) {
	defer r.store.guard(ctx)()
	t := r.store.data
	var rows []reports.SaleRow
	for _, s := range t.sales {
		if s.OwnerID != ownerID || !inDay(s.SaleDate, from, to) {
			continue
		}
		if status != "" && string(s.Status) != status {
			continue
		}
		row := reports.SaleRow{
			SaleID:        s.ID,
			InvoiceNumber: s.InvoiceNumber,
			SaleDate:      s.SaleDate,
			Quantity:      s.Quantity,
			Price:         s.Price,
			Discount:      s.Discount,
			Tax:           s.Tax,
			Total:         s.Total,
			PaidAmount:    s.PaidAmount,
			PaymentMethod: string(s.PaymentMethod),
			Status:        string(s.Status),
			CurrentCost:   types.Zero(),
		}
		if p, ok := t.products[s.ProductID]; ok {
			row.ProductName = p.Name
			row.SKU = p.SKU
			row.CurrentCost = p.PurchasePrice
		}
		if s.CustomerID != nil {
			if c, ok := t.customers[*s.CustomerID]; ok {
				name := c.FullName()
				row.CustomerName = &name
			}
		}
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b reports.SaleRow) int {
		if c := cmpTime(a.SaleDate, b.SaleDate); c != 0 {
			return c
		}
		return cmpString(a.InvoiceNumber, b.InvoiceNumber)
	})
	return rows, nil
}

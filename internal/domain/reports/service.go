// Package reports assembles filtered sale rows and totals for the report renderer.
package reports

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/types"
)

// Service provides report generation operations.
type Service struct {
	repo  Repository
	clock calendar.Clock
}

// NewService creates a new reports service.
func NewService(repo Repository, clock calendar.Clock) *Service {
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	return &Service{repo: repo, clock: clock}
}

// SalesReport returns the sale rows of one period with their totals.
func (s *Service) SalesReport(ctx context.Context, f SalesReportFilter) (*SalesReport, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if f.Period == "" {
		f.Period = "day"
	}
	anchor := s.clock.Now()
	if f.Anchor != nil {
		anchor = *f.Anchor
	}
	if f.Status == "" {
		f.Status = "completed"
	}

	from, to, err := calendar.PeriodRange(f.Period, anchor, s.clock.Location())
	if err != nil {
		return nil, apperror.NewValidation("unknown report period").WithField("period", f.Period)
	}

	rows, err := s.repo.SaleRows(ctx, ownerID, from, to, f.Status)
	if err != nil {
		return nil, fmt.Errorf("get sale rows: %w", err)
	}
	for i := range rows {
		rows[i].Profit = rows[i].Price.Sub(rows[i].CurrentCost).Mul(rows[i].Quantity)
	}

	return &SalesReport{
		Period: f.Period,
		From:   from,
		To:     to,
		Rows:   rows,
		Totals: Summarize(rows),
	}, nil
}

// Summarize totals report rows.
func Summarize(rows []SaleRow) Totals {
	t := Totals{
		Quantity:    types.Zero(),
		Revenue:     types.Zero(),
		Discount:    types.Zero(),
		Tax:         types.Zero(),
		Paid:        types.Zero(),
		Outstanding: types.Zero(),
		Profit:      types.Zero(),
		ByMethod:    make(map[string]types.Money),
	}
	for _, r := range rows {
		t.SalesCount++
		t.Quantity = t.Quantity.Add(r.Quantity)
		t.Revenue = t.Revenue.Add(r.Total)
		t.Discount = t.Discount.Add(r.Discount)
		t.Tax = t.Tax.Add(r.Tax)
		t.Paid = t.Paid.Add(r.PaidAmount)
		t.Outstanding = t.Outstanding.Add(r.Total.Sub(r.PaidAmount))
		t.Profit = t.Profit.Add(r.Profit)
		t.ByMethod[r.PaymentMethod] = t.ByMethod[r.PaymentMethod].Add(r.Total)
	}
	return t
}

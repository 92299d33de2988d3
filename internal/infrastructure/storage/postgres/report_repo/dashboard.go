// Package report_repo provides PostgreSQL implementations of the dashboard
// snapshot store and the sales report reader.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/dashboard"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

// DashboardRepo implements dashboard.Repository over daily_stats.
type DashboardRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	loc       *time.Location
}

var _ dashboard.Repository = (*DashboardRepo)(nil)

// NewDashboardRepo creates a new dashboard repository. Stored dates are read
// back as midnight in loc.
func NewDashboardRepo(txManager *postgres.TxManager, loc *time.Location) *DashboardRepo {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		loc:       loc,
	}
}

// computeSQL aggregates one owner's ledger for [$2, $3). Profit uses the
// product's current purchase price.
var computeSQL = fmt.Sprintf(`
	SELECT
		(SELECT COALESCE(SUM(s.total), 0) FROM sales s
			WHERE s.owner_id = $1 AND s.status = '%[1]s' AND s.sale_date >= $2 AND s.sale_date < $3) AS total_sales,
		(SELECT COUNT(*) FROM sales s
			WHERE s.owner_id = $1 AND s.status = '%[1]s' AND s.sale_date >= $2 AND s.sale_date < $3) AS sales_count,
		(SELECT COALESCE(SUM((s.price - p.purchase_price) * s.quantity), 0)
			FROM sales s JOIN products p ON p.id = s.product_id
			WHERE s.owner_id = $1 AND s.status = '%[1]s' AND s.sale_date >= $2 AND s.sale_date < $3) AS total_profit,
		(SELECT COALESCE(SUM(pu.total), 0) FROM purchases pu
			WHERE pu.owner_id = $1 AND pu.status = '%[2]s' AND pu.purchase_date >= $2 AND pu.purchase_date < $3) AS total_purchases,
		(SELECT COUNT(*) FROM purchases pu
			WHERE pu.owner_id = $1 AND pu.status = '%[2]s' AND pu.purchase_date >= $2 AND pu.purchase_date < $3) AS purchase_count,
		(SELECT COUNT(*) FROM customers c WHERE c.owner_id = $1 AND c.is_active) AS total_customers,
		(SELECT COUNT(*) FROM customers c
			WHERE c.owner_id = $1 AND c.created_at >= $2 AND c.created_at < $3) AS new_customers,
		(SELECT COUNT(*) FROM products p WHERE p.owner_id = $1) AS total_products,
		(SELECT COALESCE(SUM(d.amount - d.paid_amount), 0) FROM debts d
			WHERE d.owner_id = $1 AND d.status NOT IN ('%[3]s', '%[4]s')) AS total_debt
`, ledger.SaleStatusCompleted, ledger.PurchaseStatusReceived, credit.StatusPaid, credit.StatusCancelled)

// Compute reads every aggregate from one repeatable-read snapshot and takes no row locks.
func (r *DashboardRepo) Compute(ctx context.Context, ownerID id.ID, dayStart, dayEnd time.Time) (*dashboard.Stats, error) {
	st := &dashboard.Stats{}
	err := r.txManager.Snapshot(ctx, func(ctx context.Context) error {
		return pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), st, computeSQL, ownerID, dayStart, dayEnd)
	})
	if err != nil {
		return nil, fmt.Errorf("compute daily statistics: %w", err)
	}
	st.OwnerID = ownerID
	return st, nil
}

// Upsert replaces the whole row, so recomputing a day never accumulates.
func (r *DashboardRepo) Upsert(ctx context.Context, s *dashboard.Stats) error {
	sql, args, err := r.builder.
		Insert("daily_stats").
		Columns("owner_id", "date", "total_sales", "sales_count", "total_purchases", "purchase_count",
			"total_profit", "total_customers", "new_customers", "total_products", "total_debt", "updated_at").
		Values(s.OwnerID, squirrel.Expr("?::date", calendar.FormatDate(s.Date)), s.TotalSales, s.SalesCount,
			s.TotalPurchases, s.PurchaseCount, s.TotalProfit, s.TotalCustomers, s.NewCustomers,
			s.TotalProducts, s.TotalDebt, s.UpdatedAt).
		Suffix(`ON CONFLICT (owner_id, date) DO UPDATE SET
			total_sales = EXCLUDED.total_sales,
			sales_count = EXCLUDED.sales_count,
			total_purchases = EXCLUDED.total_purchases,
			purchase_count = EXCLUDED.purchase_count,
			total_profit = EXCLUDED.total_profit,
			total_customers = EXCLUDED.total_customers,
			new_customers = EXCLUDED.new_customers,
			total_products = EXCLUDED.total_products,
			total_debt = EXCLUDED.total_debt,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("upsert daily statistics: %w", err), "daily statistics")
	}
	return nil
}

func (r *DashboardRepo) selectStats(ownerID id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select(postgres.ExtractDBColumns[dashboard.Stats]()...).
		From("daily_stats").
		Where(squirrel.Eq{"owner_id": ownerID})
}

func (r *DashboardRepo) Get(ctx context.Context, ownerID id.ID, date time.Time) (*dashboard.Stats, error) {
	day := calendar.FormatDate(date)
	sql, args, err := r.selectStats(ownerID).
		Where(squirrel.Expr("date = ?::date", day)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	st := &dashboard.Stats{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), st, sql, args...); err != nil {
		return nil, postgres.NotFound(err, "daily statistics", day)
	}
	r.localize(st)
	return st, nil
}

// List returns the stored snapshots for the inclusive range [from, to], oldest first.
func (r *DashboardRepo) List(ctx context.Context, ownerID id.ID, from, to time.Time) ([]*dashboard.Stats, error) {
	sql, args, err := r.selectStats(ownerID).
		Where(squirrel.Expr("date BETWEEN ?::date AND ?::date", calendar.FormatDate(from), calendar.FormatDate(to))).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var out []*dashboard.Stats
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list daily statistics: %w", err)
	}
	for _, st := range out {
		r.localize(st)
	}
	return out, nil
}

// localize moves a DATE value, scanned as UTC midnight, to midnight in the shop zone.
func (r *DashboardRepo) localize(st *dashboard.Stats) {
	y, m, d := st.Date.Date()
	st.Date = time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

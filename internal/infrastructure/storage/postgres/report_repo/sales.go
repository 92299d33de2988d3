package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) saleRowsQuery(ownerID id.ID, from, to time.Time, status string) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"s.id AS sale_id",
			"s.invoice_number",
			"s.sale_date",
			"p.name AS product_name",
			"p.sku",
			"NULLIF(TRIM(c.first_name || ' ' || c.last_name), '') AS customer_name",
			"s.quantity",
			"s.price",
			"s.discount",
			"s.tax",
			"s.total",
			"s.paid_amount",
			"s.payment_method",
			"s.status",
			"p.purchase_price AS current_cost",
		).
		From("sales s").
		Join("products p ON p.id = s.product_id").
		LeftJoin("customers c ON c.id = s.customer_id").
		Where(squirrel.Eq{"s.owner_id": ownerID}).
		Where(squirrel.GtOrEq{"s.sale_date": from}).
		Where(squirrel.Lt{"s.sale_date": to}).
		OrderBy("s.sale_date ASC", "s.invoice_number ASC")
	if status != "" {
		q = q.Where(squirrel.Eq{"s.status": status})
	}
	return q
}

func (r *ReportRepo) SaleRows(ctx context.Context, ownerID id.ID, from, to time.Time, status string) ([]reports.SaleRow, error) {
	sql, args, err := r.saleRowsQuery(ownerID, from, to, status).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sale rows: %w", err)
	}
	var rows []reports.SaleRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sale rows: %w", err)
	}
	return rows, nil
}

package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/filter"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	productSKUKey     = "products_owner_sku_key"
	productBarcodeKey = "products_owner_barcode_key"
)

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	postgres.BaseRepo[catalog.Product]
}

var _ catalog.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseRepo: postgres.NewBaseRepo[catalog.Product](txManager, "products", "product",
			"name", "sku", "quantity", "sale_price", "total_sold", "total_revenue", "created_at", "updated_at"),
	}
}

// productEditable excludes the sale counters, which only AddSaleTotals moves.
var productEditable = []string{
	"name", "sku", "barcode", "category_id", "brand", "unit",
	"purchase_price", "sale_price", "quantity", "min_quantity", "status",
	"description", "image_url", "updated_at",
}

func productUniques(p *catalog.Product) []postgres.Unique {
	uniques := []postgres.Unique{{Constraint: productSKUKey, Field: "sku", Value: p.SKU}}
	if p.Barcode != nil {
		uniques = append(uniques, postgres.Unique{Constraint: productBarcodeKey, Field: "barcode", Value: *p.Barcode})
	}
	return uniques
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	return r.Insert(ctx, p, productUniques(p)...)
}

// Update writes the editable columns and reloads the stored sale counters into p.
func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	sql, args, err := r.Builder().
		Update(r.Table).
		SetMap(postgres.SetMapFor(p, productEditable)).
		Where(squirrel.Eq{"id": p.ID, "owner_id": p.OwnerID}).
		Suffix("RETURNING total_sold, total_revenue").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	err = r.Txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&p.TotalSold, &p.TotalRevenue)
	if err != nil {
		if postgres.IsNoRows(err) {
			return postgres.NotFound(err, r.Entity, p.ID)
		}
		return postgres.MapError(fmt.Errorf("update product: %w", err), r.Entity, productUniques(p)...)
	}
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, p *catalog.Product) error {
	return r.UpdateColumns(ctx, p.ID, p.OwnerID, p, []string{"quantity", "status", "updated_at"})
}

func (r *ProductRepo) AddSaleTotals(ctx context.Context, ownerID, productID id.ID, qty types.Quantity, revenue types.Money) error {
	q := r.Builder().
		Update(r.Table).
		Set("total_sold", squirrel.Expr("total_sold + ?", qty)).
		Set("total_revenue", squirrel.Expr("total_revenue + ?", revenue)).
		Where(squirrel.Eq{"id": productID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, productID)
}

// Delete removes the product. Sales and purchases reference it ON DELETE CASCADE,
// and debts cascade from their sales.
func (r *ProductRepo) Delete(ctx context.Context, ownerID, productID id.ID) error {
	q := r.Builder().
		Delete(r.Table).
		Where(squirrel.Eq{"id": productID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, productID)
}

func (r *ProductRepo) GetByID(ctx context.Context, ownerID, productID id.ID) (*catalog.Product, error) {
	return r.FindByID(ctx, ownerID, productID)
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, ownerID, productID id.ID) (*catalog.Product, error) {
	return r.FindForUpdate(ctx, ownerID, productID)
}

func (r *ProductRepo) SKUExists(ctx context.Context, ownerID id.ID, sku string, excludeID id.ID) (bool, error) {
	q := r.Select(ownerID).
		Where(squirrel.Eq{"sku": sku}).
		Where(squirrel.NotEq{"id": excludeID})
	return r.Exists(ctx, q)
}

func (r *ProductRepo) List(ctx context.Context, ownerID id.ID, f catalog.ProductFilter) (filter.ListResult[*catalog.Product], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *ProductRepo) applyFilter(q squirrel.SelectBuilder, f catalog.ProductFilter) squirrel.SelectBuilder {
	if f.Search != "" {
		pattern := postgres.LikePattern(f.Search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"barcode": pattern},
		})
	}
	if f.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.LowStock != nil {
		if *f.LowStock {
			q = q.Where("quantity <= min_quantity")
		} else {
			q = q.Where("quantity > min_quantity")
		}
	}
	return q
}

func (r *ProductRepo) CategoryTotals(ctx context.Context, ownerID, categoryID id.ID) (int, types.Money, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)", "COALESCE(SUM(quantity * purchase_price), 0)").
		From(r.Table).
		Where(squirrel.Eq{"owner_id": ownerID, "category_id": categoryID}).
		ToSql()
	if err != nil {
		return 0, types.Zero(), fmt.Errorf("build category totals: %w", err)
	}
	var (
		count int
		value types.Money
	)
	if err := r.Txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count, &value); err != nil {
		return 0, types.Zero(), fmt.Errorf("category totals: %w", err)
	}
	return count, value, nil
}

func (r *ProductRepo) CustomersWithSales(ctx context.Context, ownerID, productID id.ID) ([]id.ID, error) {
	sql, args, err := r.Builder().
		Select("DISTINCT customer_id").
		From("sales").
		Where(squirrel.Eq{"owner_id": ownerID, "product_id": productID}).
		Where(squirrel.NotEq{"customer_id": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build customers with sales: %w", err)
	}
	rows, err := r.Txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("customers with sales: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[id.ID])
	if err != nil {
		return nil, fmt.Errorf("scan customer ids: %w", err)
	}
	return out, nil
}

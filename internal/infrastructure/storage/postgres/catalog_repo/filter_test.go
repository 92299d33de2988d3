package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/customer"
)

func TestProductRepo_ApplyFilter(t *testing.T) {
	repo := NewProductRepo(nil)
	categoryID := id.MustParse("0190f5d2-7c1e-7a3b-9d4e-2f6a8b1c3d5e")
	low := true

	tests := []struct {
		name     string
		filter   catalog.ProductFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty",
			wantSQL: "SELECT id FROM products",
		},
		{
			name:     "search",
			filter:   catalog.ProductFilter{Search: "milk"},
			wantSQL:  "SELECT id FROM products WHERE (name ILIKE $1 OR sku ILIKE $2 OR barcode ILIKE $3)",
			wantArgs: []any{"%milk%", "%milk%", "%milk%"},
		},
		{
			name:     "category and status",
			filter:   catalog.ProductFilter{CategoryID: &categoryID, Status: catalog.StatusLowStock},
			wantSQL:  "SELECT id FROM products WHERE category_id = $1 AND status = $2",
			wantArgs: []any{categoryID.String(), catalog.StatusLowStock},
		},
		{
			name:    "low stock",
			filter:  catalog.ProductFilter{LowStock: &low},
			wantSQL: "SELECT id FROM products WHERE quantity <= min_quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := repo.applyFilter(repo.Builder().Select("id").From("products"), tt.filter)
			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestCategoryRepo_ApplyFilter(t *testing.T) {
	repo := NewCategoryRepo(nil)

	sql, args, err := repo.applyFilter(repo.Builder().Select("id").From("categories"),
		catalog.CategoryFilter{Search: "dairy", RootOnly: true}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM categories WHERE (name ILIKE $1 OR description ILIKE $2) AND parent_id IS NULL", sql)
	assert.Equal(t, []any{"%dairy%", "%dairy%"}, args)
}

func TestCustomerRepo_ApplyFilter(t *testing.T) {
	repo := NewCustomerRepo(nil)
	active := false

	sql, args, err := repo.applyFilter(repo.Builder().Select("id").From("customers"),
		customer.Filter{CustomerType: customer.TypeVIP, IsActive: &active}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM customers WHERE customer_type = $1 AND is_active = $2", sql)
	assert.Equal(t, []any{customer.TypeVIP, false}, args)
}

func TestBaseRepo_OrderBy(t *testing.T) {
	repo := NewProductRepo(nil)

	assert.Equal(t, []string{"total_sold DESC", "name ASC", "id ASC"}, repo.OrderBy("-total_sold,name"))
	assert.Equal(t, []string{"id ASC"}, repo.OrderBy("password_hash; DROP TABLE products"))
	assert.Equal(t, []string{"id ASC"}, repo.OrderBy(""))
}

func TestBaseRepo_ScopedSelect(t *testing.T) {
	repo := NewCategoryRepo(nil)
	ownerID := id.New()

	sql, args, err := repo.Select(ownerID).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM categories WHERE owner_id = $1")
	assert.Contains(t, sql, "product_count")
	assert.Equal(t, []any{ownerID.String()}, args)
}

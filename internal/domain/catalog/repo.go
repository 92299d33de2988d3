package catalog

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/filter"
)

// CategoryFilter narrows category lists.
type CategoryFilter struct {
	Search   string
	ParentID *id.ID
	RootOnly bool
	filter.Page
}

// ProductFilter narrows product lists.
type ProductFilter struct {
	// Search matches name, SKU or barcode
	Search     string
	CategoryID *id.ID
	Status     Status
	LowStock   *bool
	filter.Page
}

// CategoryRepository persists categories. All lookups are scoped to one owner.
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error

	// UpdateRollup writes only product_count and total_value.
	UpdateRollup(ctx context.Context, c *Category) error

	// Delete removes the category, detaching member products and child categories.
	Delete(ctx context.Context, ownerID, categoryID id.ID) error

	GetByID(ctx context.Context, ownerID, categoryID id.ID) (*Category, error)

	// GetForUpdate retrieves the category with a row lock.
	GetForUpdate(ctx context.Context, ownerID, categoryID id.ID) (*Category, error)

	FindByName(ctx context.Context, ownerID id.ID, name string) (*Category, error)
	SlugExists(ctx context.Context, ownerID id.ID, slug string, excludeID id.ID) (bool, error)
	HasChildren(ctx context.Context, ownerID, categoryID id.ID) (bool, error)
	List(ctx context.Context, ownerID id.ID, f CategoryFilter) (filter.ListResult[*Category], error)

	// GetPath returns the chain from the root down to categoryID.
	GetPath(ctx context.Context, ownerID, categoryID id.ID) ([]*Category, error)
}

// ProductRepository persists products. All lookups are scoped to one owner.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// UpdateStock writes only quantity and status.
	UpdateStock(ctx context.Context, p *Product) error

	// AddSaleTotals adds to total_sold and total_revenue (negative values reverse a sale).
	AddSaleTotals(ctx context.Context, ownerID, productID id.ID, qty types.Quantity, revenue types.Money) error

	// Delete removes the product together with its sales, purchases and their debts.
	Delete(ctx context.Context, ownerID, productID id.ID) error

	GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error)

	// GetForUpdate retrieves the product with a row lock.
	GetForUpdate(ctx context.Context, ownerID, productID id.ID) (*Product, error)

	SKUExists(ctx context.Context, ownerID id.ID, sku string, excludeID id.ID) (bool, error)
	List(ctx context.Context, ownerID id.ID, f ProductFilter) (filter.ListResult[*Product], error)

	// CategoryTotals counts member products and sums quantity × purchase_price.
	CategoryTotals(ctx context.Context, ownerID, categoryID id.ID) (int, types.Money, error)

	// CustomersWithSales lists customers that bought the product.
	CustomersWithSales(ctx context.Context, ownerID, productID id.ID) ([]id.ID, error)
}

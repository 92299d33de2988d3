package dto

import (
	"github.com/shopspring/decimal"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalog"
)

// --- Categories ---

// CategoryRequest creates or replaces a category.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ParentID    *id.ID  `json:"parentId"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
}

// ToInput converts to the domain input.
func (r *CategoryRequest) ToInput() catalog.CategoryInput {
	return catalog.CategoryInput{
		Name:        r.Name,
		Description: r.Description,
		ParentID:    r.ParentID,
		Icon:        r.Icon,
		Color:       r.Color,
	}
}

// CategoryListQuery filters category lists.
type CategoryListQuery struct {
	PageQuery
	Search   string `form:"search"`
	ParentID string `form:"parentId"`
	RootOnly bool   `form:"rootOnly"`
}

// ToFilter converts to the domain filter.
func (q CategoryListQuery) ToFilter() (catalog.CategoryFilter, error) {
	parentID, err := ParseOptionalID("parentId", q.ParentID)
	if err != nil {
		return catalog.CategoryFilter{}, err
	}
	return catalog.CategoryFilter{
		Search:   q.Search,
		ParentID: parentID,
		RootOnly: q.RootOnly,
		Page:     q.ToPage(),
	}, nil
}

// --- Products ---

// ProductRequest creates or replaces a product. An empty SKU is generated on create.
type ProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	SKU           string          `json:"sku"`
	Barcode       *string         `json:"barcode"`
	CategoryID    *id.ID          `json:"categoryId"`
	Brand         *string         `json:"brand"`
	Unit          string          `json:"unit"`
	PurchasePrice types.Money     `json:"purchasePrice"`
	SalePrice     types.Money     `json:"salePrice"`
	Quantity      *types.Quantity `json:"quantity"`
	MinQuantity   *types.Quantity `json:"minQuantity"`
	Description   *string         `json:"description"`
}

// ToInput converts to the domain input.
func (r *ProductRequest) ToInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:          r.Name,
		SKU:           r.SKU,
		Barcode:       r.Barcode,
		CategoryID:    r.CategoryID,
		Brand:         r.Brand,
		Unit:          catalog.Unit(r.Unit),
		PurchasePrice: r.PurchasePrice,
		SalePrice:     r.SalePrice,
		Quantity:      r.Quantity,
		MinQuantity:   r.MinQuantity,
		Description:   r.Description,
	}
}

// StockAdjustRequest adds (or with a negative delta removes) stock.
type StockAdjustRequest struct {
	Delta types.Quantity `json:"delta"`
}

// ProductListQuery filters product lists.
type ProductListQuery struct {
	PageQuery
	Search     string `form:"search"`
	CategoryID string `form:"categoryId"`
	Status     string `form:"status"`
	LowStock   string `form:"lowStock"`
}

// ToFilter converts to the domain filter.
func (q ProductListQuery) ToFilter() (catalog.ProductFilter, error) {
	categoryID, err := ParseOptionalID("categoryId", q.CategoryID)
	if err != nil {
		return catalog.ProductFilter{}, err
	}
	return catalog.ProductFilter{
		Search:     q.Search,
		CategoryID: categoryID,
		Status:     catalog.Status(q.Status),
		LowStock:   ParseOptionalBool(q.LowStock),
		Page:       q.ToPage(),
	}, nil
}

// ProductResponse is a product with its derived figures.
type ProductResponse struct {
	*catalog.Product
	Profit           types.Money     `json:"profit"`
	ProfitPercentage decimal.Decimal `json:"profitPercentage"`
	StockValue       types.Money     `json:"stockValue"`
	IsLowStock       bool            `json:"isLowStock"`
	StockColor       string          `json:"stockColor"`
}

// FromProduct creates a ProductResponse.
func FromProduct(p *catalog.Product) ProductResponse {
	return ProductResponse{
		Product:          p,
		Profit:           p.UnitProfit(),
		ProfitPercentage: p.ProfitPercentage(),
		StockValue:       p.TotalValue(),
		IsLowStock:       p.IsLowStock(),
		StockColor:       p.StockColor(),
	}
}

// Package catalog owns categories, products and their stock quantities.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Status is the stock-derived product status.
type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// Unit is the unit of measure a product is sold in.
type Unit string

const (
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitPiece      Unit = "pc"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
	UnitPack       Unit = "pack"
	UnitBox        Unit = "box"
	UnitBottle     Unit = "bottle"
	UnitMeter      Unit = "m"
	UnitCentimeter Unit = "cm"
	UnitPair       Unit = "pair"
	UnitSet        Unit = "set"
)

var validUnits = map[Unit]bool{
	UnitKilogram: true, UnitGram: true, UnitPiece: true, UnitLiter: true,
	UnitMilliliter: true, UnitPack: true, UnitBox: true, UnitBottle: true,
	UnitMeter: true, UnitCentimeter: true, UnitPair: true, UnitSet: true,
}

// DefaultMinQuantity is the low-stock threshold used when none is given.
var DefaultMinQuantity = decimal.NewFromInt(5)

// Category groups products into a tree.
type Category struct {
	ID          id.ID   `db:"id" json:"id"`
	OwnerID     id.ID   `db:"owner_id" json:"-"`
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description,omitempty"`
	ParentID    *id.ID  `db:"parent_id" json:"parentId,omitempty"`
	Icon        string  `db:"icon" json:"icon"`
	Color       string  `db:"color" json:"color"`

	// Cached rollups, recomputed by RecomputeCategoryRollup.
	ProductCount int         `db:"product_count" json:"productCount"`
	TotalValue   types.Money `db:"total_value" json:"totalValue"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Product is a stock-keeping item.
type Product struct {
	ID            id.ID          `db:"id" json:"id"`
	OwnerID       id.ID          `db:"owner_id" json:"-"`
	Name          string         `db:"name" json:"name"`
	SKU           string         `db:"sku" json:"sku"`
	Barcode       *string        `db:"barcode" json:"barcode,omitempty"`
	CategoryID    *id.ID         `db:"category_id" json:"categoryId,omitempty"`
	Brand         *string        `db:"brand" json:"brand,omitempty"`
	Unit          Unit           `db:"unit" json:"unit"`
	PurchasePrice types.Money    `db:"purchase_price" json:"purchasePrice"`
	SalePrice     types.Money    `db:"sale_price" json:"salePrice"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MinQuantity   types.Quantity `db:"min_quantity" json:"minQuantity"`
	Status        Status         `db:"status" json:"status"`
	Description   *string        `db:"description" json:"description,omitempty"`
	ImageURL      *string        `db:"image_url" json:"imageUrl,omitempty"`
	TotalSold     types.Quantity `db:"total_sold" json:"totalSold"`
	TotalRevenue  types.Money    `db:"total_revenue" json:"totalRevenue"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// DeriveStatus maps a stock level onto a status.
func DeriveStatus(quantity, minQuantity types.Quantity) Status {
	switch {
	case !quantity.IsPositive():
		return StatusOutOfStock
	case quantity.LessThanOrEqual(minQuantity):
		return StatusLowStock
	default:
		return StatusActive
	}
}

// RefreshStatus re-derives Status from the current quantity.
func (p *Product) RefreshStatus() {
	p.Status = DeriveStatus(p.Quantity, p.MinQuantity)
}

// Validate checks the write-time invariants of a product.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithField("name", p.Name)
	}
	if len(p.Name) > 200 {
		return apperror.NewValidation("name is too long").WithField("name", p.Name)
	}
	if !validUnits[p.Unit] {
		return apperror.NewValidation("unknown unit").WithField("unit", string(p.Unit))
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithField("purchasePrice", p.PurchasePrice.String())
	}
	if p.SalePrice.LessThan(p.PurchasePrice) {
		return apperror.NewValidation("sale price cannot be lower than purchase price").
			WithField("salePrice", p.SalePrice.String()).
			WithDetail("purchasePrice", p.PurchasePrice.String())
	}
	if !types.FitsScale(p.PurchasePrice, types.PriceScale) || !types.FitsScale(p.SalePrice, types.PriceScale) {
		return apperror.NewValidation(fmt.Sprintf("prices allow at most %d decimal places", types.PriceScale)).
			WithField("salePrice", p.SalePrice.String())
	}
	if p.Quantity.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").WithField("quantity", p.Quantity.String())
	}
	if p.MinQuantity.IsNegative() {
		return apperror.NewValidation("min quantity cannot be negative").
			WithField("minQuantity", p.MinQuantity.String())
	}
	if !types.FitsScale(p.Quantity, types.QuantityScale) {
		return apperror.NewValidation(fmt.Sprintf("quantity allows at most %d decimal places", types.QuantityScale)).
			WithField("quantity", p.Quantity.String())
	}
	return nil
}

// UnitProfit is sale price minus purchase price.
func (p *Product) UnitProfit() types.Money {
	return p.SalePrice.Sub(p.PurchasePrice)
}

// ProfitPercentage is the markup over cost, in percent.
func (p *Product) ProfitPercentage() decimal.Decimal {
	return types.Percent(p.UnitProfit(), p.PurchasePrice)
}

// TotalValue is the stock valued at cost.
func (p *Product) TotalValue() types.Money {
	return p.Quantity.Mul(p.PurchasePrice)
}

// IsLowStock reports quantity at or below the threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity.LessThanOrEqual(p.MinQuantity)
}

// StockColor is the traffic-light colour for the stock level.
func (p *Product) StockColor() string {
	switch {
	case !p.Quantity.IsPositive():
		return "red"
	case p.IsLowStock():
		return "orange"
	default:
		return "green"
	}
}

// Validate checks the write-time invariants of a category.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("name is required").WithField("name", c.Name)
	}
	if len(c.Name) > 100 {
		return apperror.NewValidation("name is too long").WithField("name", c.Name)
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return apperror.NewValidation("category cannot be its own parent").
			WithField("parentId", c.ParentID.String())
	}
	return nil
}

// Slugify lower-cases name and turns spaces into dashes.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

type categoryStyle struct {
	keyword string
	icon    string
	color   string
}

// Table order decides ties.
var categoryStyles = []categoryStyle{
	{"food", "ri-restaurant-line", "#10B981"},
	{"drink", "ri-cup-line", "#3B82F6"},
	{"clothing", "ri-t-shirt-line", "#8B5CF6"},
	{"electronics", "ri-smartphone-line", "#F59E0B"},
	{"furniture", "ri-sofa-line", "#F97316"},
	{"book", "ri-book-line", "#EC4899"},
	{"medicine", "ri-medicine-bottle-line", "#EF4444"},
	{"tool", "ri-tools-line", "#6B7280"},
	{"beauty", "ri-heart-line", "#8B5CF6"},
	{"sport", "ri-basketball-line", "#10B981"},
}

const (
	defaultIcon  = "ri-folder-line"
	defaultColor = "#3B82F6"
)

// DefaultStyle picks an icon and colour from keywords in the category name.
func DefaultStyle(name string) (icon, color string) {
	lower := strings.ToLower(name)
	for _, s := range categoryStyles {
		if strings.Contains(lower, s.keyword) {
			return s.icon, s.color
		}
	}
	return defaultIcon, defaultColor
}

// SKUPrefix builds the upper-case initials of the first three words of name.
func SKUPrefix(name string) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	var b strings.Builder
	for _, w := range words {
		for _, r := range w {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	if b.Len() == 0 {
		return "P"
	}
	return b.String()
}

// FormatSKU joins prefix and a zero-padded counter.
func FormatSKU(prefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// PathSeparator joins category names in a full path.
const PathSeparator = " → "

// FullPath renders a root-to-leaf chain.
func FullPath(chain []*Category) string {
	names := make([]string, 0, len(chain))
	for _, c := range chain {
		names = append(names, c.Name)
	}
	return strings.Join(names, PathSeparator)
}

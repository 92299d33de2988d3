package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/types"
)

func TestDeriveStatus(t *testing.T) {
	threshold := types.Qty(5)
	assert.Equal(t, StatusOutOfStock, DeriveStatus(types.Zero(), threshold))
	assert.Equal(t, StatusLowStock, DeriveStatus(types.MustMoney("0.5"), threshold))
	assert.Equal(t, StatusLowStock, DeriveStatus(types.Qty(5), threshold))
	assert.Equal(t, StatusActive, DeriveStatus(types.Qty(6), threshold))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fresh-fruit", Slugify("  Fresh   Fruit "))
	assert.Equal(t, "a-b", Slugify("a - - b"))
	assert.Equal(t, "", Slugify("   "))
}

func TestSKUPrefix(t *testing.T) {
	assert.Equal(t, "ABC", SKUPrefix("apple banana cherry date"))
	assert.Equal(t, "Ö", SKUPrefix("ölçü"))
	assert.Equal(t, "P", SKUPrefix(""))
	assert.Equal(t, "ABC0042", FormatSKU("ABC", 42))
	assert.Equal(t, "X12345", FormatSKU("X", 12345))
}

func TestDefaultStyle(t *testing.T) {
	icon, color := DefaultStyle("Sports & Drinks")
	assert.Equal(t, "ri-cup-line", icon, "table order decides ties")
	assert.Equal(t, "#3B82F6", color)

	icon, color = DefaultStyle("Misc")
	assert.Equal(t, "ri-folder-line", icon)
	assert.Equal(t, "#3B82F6", color)
}

func TestProductDerivedFigures(t *testing.T) {
	p := &Product{
		PurchasePrice: types.MustMoney("80"),
		SalePrice:     types.MustMoney("100"),
		Quantity:      types.Qty(3),
		MinQuantity:   types.Qty(5),
	}
	assert.True(t, p.UnitProfit().Equal(types.MustMoney("20")))
	assert.True(t, p.ProfitPercentage().Equal(types.MustMoney("25")))
	assert.True(t, p.TotalValue().Equal(types.MustMoney("240")))
	assert.True(t, p.IsLowStock())
	assert.Equal(t, "orange", p.StockColor())

	p.Quantity = types.Zero()
	assert.Equal(t, "red", p.StockColor())
	p.Quantity = types.Qty(50)
	assert.Equal(t, "green", p.StockColor())
}

func TestFullPath(t *testing.T) {
	chain := []*Category{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	assert.Equal(t, "A → B → C", FullPath(chain))
	assert.Equal(t, "", FullPath(nil))
}

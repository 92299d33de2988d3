// Package types provides the monetary and quantity types shared by every module.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Quantity is a stock quantity. Fractional units (kg, l, m) are allowed.
type Quantity = decimal.Decimal

// PriceScale is the number of fractional digits stored for unit prices.
const PriceScale = 2

// QuantityScale is the number of fractional digits stored for quantities.
const QuantityScale = 3

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Qty builds an integral quantity.
func Qty(n int64) Quantity {
	return decimal.NewFromInt(n)
}

// FitsScale reports whether d has no more fractional digits than scale.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// Percent returns part/whole*100 rounded to 2 digits, zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2)
}

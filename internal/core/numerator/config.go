// Package numerator provides domain contracts for sequential number generation.
// Implementations live in the infrastructure layer.
package numerator

import (
	"fmt"
	"time"
)

// Reset periods
const (
	ResetNever = "never"
	ResetDay   = "day"
	ResetMonth = "month"
	ResetYear  = "year"
)

// Config holds numbering configuration for one sequence family.
type Config struct {
	// Prefix added to all numbers (e.g., "INV")
	Prefix string

	// Scope separates counters of different owners.
	Scope string

	// IncludeDate puts the period date (YYYYMMDD) between prefix and counter.
	IncludeDate bool

	// PadWidth is the minimum counter width (default 4)
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never"
	ResetPeriod string
}

// InvoiceConfig is the per-owner, per-day sale invoice sequence: INV-YYYYMMDD-0001.
func InvoiceConfig(scope string) Config {
	return Config{
		Prefix:      "INV",
		Scope:       scope,
		IncludeDate: true,
		PadWidth:    4,
		ResetPeriod: ResetDay,
	}
}

// SKUConfig is the per-owner product code sequence. It never resets.
func SKUConfig(scope string) Config {
	return Config{
		Prefix:      "SKU",
		Scope:       scope,
		PadWidth:    4,
		ResetPeriod: ResetNever,
	}
}

// BuildKey creates the counter key for cfg and period.
func BuildKey(cfg Config, period time.Time) string {
	base := cfg.Prefix
	if cfg.Scope != "" {
		base = cfg.Prefix + ":" + cfg.Scope
	}
	switch cfg.ResetPeriod {
	case ResetDay:
		return base + ":" + period.Format("20060102")
	case ResetMonth:
		return base + ":" + period.Format("200601")
	case ResetYear:
		return base + ":" + period.Format("2006")
	default:
		return base
	}
}

// Format renders the final number string.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	if cfg.IncludeDate {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("20060102"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

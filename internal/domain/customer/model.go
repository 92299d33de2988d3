// Package customer is the customer directory with cached purchase statistics.
package customer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Gender values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Type segments customers.
type Type string

const (
	TypeRegular   Type = "regular"
	TypeWholesale Type = "wholesale"
	TypeVIP       Type = "vip"
	TypeEmployee  Type = "employee"
)

// Tier is the loyalty tier derived from total spend.
type Tier string

const (
	TierDiamond Tier = "diamond"
	TierGold    Tier = "gold"
	TierSilver  Tier = "silver"
	TierBronze  Tier = "bronze"
	TierNew     Tier = "new"
)

// Loyalty thresholds in currency units.
var (
	DiamondThreshold = decimal.NewFromInt(10_000_000)
	GoldThreshold    = decimal.NewFromInt(5_000_000)
	SilverThreshold  = decimal.NewFromInt(1_000_000)
	BronzeThreshold  = decimal.NewFromInt(500_000)
)

// Customer is a buyer (and possibly a supplier).
type Customer struct {
	ID           id.ID      `db:"id" json:"id"`
	OwnerID      id.ID      `db:"owner_id" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Phone        string     `db:"phone" json:"phone"`
	Email        *string    `db:"email" json:"email,omitempty"`
	Address      *string    `db:"address" json:"address,omitempty"`
	BirthDate    *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Gender       *Gender    `db:"gender" json:"gender,omitempty"`
	Company      *string    `db:"company" json:"company,omitempty"`
	TaxID        *string    `db:"tax_id" json:"taxId,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	CustomerType Type       `db:"customer_type" json:"customerType"`

	// Cached statistics, recomputed by RefreshStatistics.
	TotalPurchases int         `db:"total_purchases" json:"totalPurchases"`
	TotalSpent     types.Money `db:"total_spent" json:"totalSpent"`
	LastPurchase   *time.Time  `db:"last_purchase" json:"lastPurchase,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate checks the write-time invariants of a customer.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" {
		return apperror.NewValidation("first name is required").WithField("firstName", c.FirstName)
	}
	if c.Gender != nil {
		switch *c.Gender {
		case GenderMale, GenderFemale, GenderOther:
		default:
			return apperror.NewValidation("unknown gender").WithField("gender", string(*c.Gender))
		}
	}
	switch c.CustomerType {
	case TypeRegular, TypeWholesale, TypeVIP, TypeEmployee:
	default:
		return apperror.NewValidation("unknown customer type").WithField("customerType", string(c.CustomerType))
	}
	if c.Email != nil && *c.Email != "" && !strings.Contains(*c.Email, "@") {
		return apperror.NewValidation("invalid email").WithField("email", *c.Email)
	}
	return nil
}

// NormalizePhone strips every non-digit. An empty result is a validation error.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", apperror.NewValidation("phone must contain digits").WithField("phone", raw)
	}
	return b.String(), nil
}

// LoyaltyTier maps total spend onto a tier.
func LoyaltyTier(totalSpent types.Money) Tier {
	switch {
	case totalSpent.GreaterThanOrEqual(DiamondThreshold):
		return TierDiamond
	case totalSpent.GreaterThanOrEqual(GoldThreshold):
		return TierGold
	case totalSpent.GreaterThanOrEqual(SilverThreshold):
		return TierSilver
	case totalSpent.GreaterThanOrEqual(BronzeThreshold):
		return TierBronze
	default:
		return TierNew
	}
}

// SalesSummary aggregates a customer's completed sales.
type SalesSummary struct {
	Count        int         `db:"count"`
	Total        types.Money `db:"total"`
	LastPurchase *time.Time  `db:"last_purchase"`
}

// DebtSummary aggregates a customer's open debts.
type DebtSummary struct {
	Total types.Money `db:"total"`
	Count int         `db:"count"`
}

// Statistics is the refreshed state of a customer.
type Statistics struct {
	CustomerID     id.ID       `json:"customerId"`
	TotalPurchases int         `json:"totalPurchases"`
	TotalSpent     types.Money `json:"totalSpent"`
	LastPurchase   *time.Time  `json:"lastPurchase,omitempty"`
	TotalDebt      types.Money `json:"totalDebt"`
	DebtCount      int         `json:"debtCount"`
	LoyaltyTier    Tier        `json:"loyaltyTier"`
}

// Details is a customer with derived read-side fields.
type Details struct {
	*Customer
	FullName    string      `json:"fullName"`
	TotalDebt   types.Money `json:"totalDebt"`
	DebtCount   int         `json:"debtCount"`
	LoyaltyTier Tier        `json:"loyaltyTier"`
}

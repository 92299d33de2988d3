// Package ledger records sales and purchases and keeps stock in step with them.
package ledger

import (
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCredit   PaymentMethod = "credit"
	PaymentMixed    PaymentMethod = "mixed"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit, PaymentMixed:
		return true
	}
	return false
}

// SaleStatus is the sale lifecycle.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// PurchaseStatus is the purchase lifecycle.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Valid reports whether s is a known purchase status.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// Sale is one sold line.
type Sale struct {
	ID            id.ID          `db:"id" json:"id"`
	OwnerID       id.ID          `db:"owner_id" json:"-"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	CustomerID    *id.ID         `db:"customer_id" json:"customerId,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Price         types.Money    `db:"price" json:"price"`
	Discount      types.Money    `db:"discount" json:"discount"`
	Tax           types.Money    `db:"tax" json:"tax"`
	Total         types.Money    `db:"total" json:"total"`
	PaymentMethod PaymentMethod  `db:"payment_method" json:"paymentMethod"`
	PaidAmount    types.Money    `db:"paid_amount" json:"paidAmount"`
	InvoiceNumber string         `db:"invoice_number" json:"invoiceNumber"`
	Status        SaleStatus     `db:"status" json:"status"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	SaleDate      time.Time      `db:"sale_date" json:"saleDate"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// Purchase is one stock intake line.
type Purchase struct {
	ID            id.ID          `db:"id" json:"id"`
	OwnerID       id.ID          `db:"owner_id" json:"-"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	SupplierID    *id.ID         `db:"supplier_id" json:"supplierId,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Price         types.Money    `db:"price" json:"price"`
	Total         types.Money    `db:"total" json:"total"`
	InvoiceNumber *string        `db:"invoice_number" json:"invoiceNumber,omitempty"`
	DeliveryDate  *time.Time     `db:"delivery_date" json:"deliveryDate,omitempty"`
	ExpiryDate    *time.Time     `db:"expiry_date" json:"expiryDate,omitempty"`
	Status        PurchaseStatus `db:"status" json:"status"`
	ReceivedAt    *time.Time     `db:"received_at" json:"receivedAt,omitempty"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`
	PurchaseDate  time.Time      `db:"purchase_date" json:"purchaseDate"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updatedAt"`
}

// SaleTotal is quantity × price − discount + tax, exact.
func SaleTotal(quantity types.Quantity, price, discount, tax types.Money) types.Money {
	return quantity.Mul(price).Sub(discount).Add(tax)
}

// PurchaseTotal is quantity × price, exact.
func PurchaseTotal(quantity types.Quantity, price types.Money) types.Money {
	return quantity.Mul(price)
}

// Profit uses the product's current purchase price, not the cost at sale time.
func (s *Sale) Profit(currentCost types.Money) types.Money {
	return s.Price.Sub(currentCost).Mul(s.Quantity)
}

// RemainingAmount is total minus what was paid at the till.
func (s *Sale) RemainingAmount() types.Money {
	return s.Total.Sub(s.PaidAmount)
}

// IsPaid reports a fully settled sale.
func (s *Sale) IsPaid() bool {
	return s.PaidAmount.GreaterThanOrEqual(s.Total)
}

// UnitPrice is the price per unit of a purchase.
func (p *Purchase) UnitPrice() types.Money {
	if p.Quantity.IsZero() {
		return types.Zero()
	}
	return p.Total.Div(p.Quantity).Round(types.PriceScale)
}

func validateQuantity(field string, q types.Quantity) error {
	if !q.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithField(field, q.String())
	}
	if !types.FitsScale(q, types.QuantityScale) {
		return apperror.NewValidation("quantity allows at most 3 decimal places").WithField(field, q.String())
	}
	return nil
}

func validateAmount(field string, m types.Money) error {
	if m.IsNegative() {
		return apperror.NewValidation(field+" cannot be negative").WithField(field, m.String())
	}
	if !types.FitsScale(m, types.PriceScale) {
		return apperror.NewValidation(field+" allows at most 2 decimal places").WithField(field, m.String())
	}
	return nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

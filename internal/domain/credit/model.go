// Package credit tracks debts opened by credit sales and the payments against them.
package credit

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// TermDays is the credit period of a sale.
const TermDays = 30

// Status is the stored debt status.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
	StatusCancelled     Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is the channel a debt payment came through.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodCard || m == MethodTransfer
}

// Debt is money a customer owes for a credit sale.
type Debt struct {
	ID         id.ID       `db:"id" json:"id"`
	OwnerID    id.ID       `db:"owner_id" json:"-"`
	CustomerID id.ID       `db:"customer_id" json:"customerId"`
	SaleID     *id.ID      `db:"sale_id" json:"saleId,omitempty"`
	Amount     types.Money `db:"amount" json:"amount"`
	PaidAmount types.Money `db:"paid_amount" json:"paidAmount"`
	DueDate    time.Time   `db:"due_date" json:"dueDate"`
	PaidDate   *time.Time  `db:"paid_date" json:"paidDate,omitempty"`
	Status     Status      `db:"status" json:"status"`
	Notes      *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`

	Payments []*Payment `db:"-" json:"payments,omitempty"`
}

// Payment is one applied payment.
type Payment struct {
	ID      id.ID         `db:"id" json:"id"`
	OwnerID id.ID         `db:"owner_id" json:"-"`
	DebtID  id.ID         `db:"debt_id" json:"debtId"`
	Amount  types.Money   `db:"amount" json:"amount"`
	Method  PaymentMethod `db:"method" json:"method"`
	Note    *string       `db:"note" json:"note,omitempty"`
	PaidAt  time.Time     `db:"paid_at" json:"paidAt"`
}

// DueDateFor is the due date of a sale made at saleDate.
func DueDateFor(saleDate time.Time, loc *time.Location) time.Time {
	return calendar.StartOfDay(saleDate, loc).AddDate(0, 0, TermDays)
}

// Remaining is amount minus paid amount.
func (d *Debt) Remaining() types.Money {
	return d.Amount.Sub(d.PaidAmount)
}

// IsOverdue is true whenever the due date has passed and the debt is not paid,
// whatever the stored status says. A partially paid debt keeps its stored status
// while this flag turns true.
func (d *Debt) IsOverdue(today time.Time) bool {
	return d.DueDate.Before(today) && d.Status != StatusPaid
}

// DaysOverdue counts whole days past the due date, zero when not overdue.
func (d *Debt) DaysOverdue(today time.Time, loc *time.Location) int {
	if !d.IsOverdue(today) {
		return 0
	}
	return calendar.DaysBetween(d.DueDate, today, loc)
}

// IsOpen reports a debt that still counts towards what the customer owes.
func (d *Debt) IsOpen() bool {
	return d.Status != StatusPaid && d.Status != StatusCancelled
}

// ShouldMarkOverdue reports a pending, untouched debt whose due date has passed.
func (d *Debt) ShouldMarkOverdue(today time.Time) bool {
	return d.Status == StatusPending && d.PaidAmount.IsZero() && d.DueDate.Before(today)
}

// Apply books amount against the debt and advances the status.
func (d *Debt) Apply(amount types.Money, now time.Time) error {
	if !amount.IsPositive() {
		return apperror.NewInvalidPayment("payment amount must be positive").WithField("amount", amount.String())
	}
	if !types.FitsScale(amount, types.PriceScale) {
		return apperror.NewInvalidPayment("payment allows at most 2 decimal places").WithField("amount", amount.String())
	}
	if d.Status == StatusCancelled {
		return apperror.NewInvalidPayment("debt is cancelled").WithField("status", string(d.Status))
	}
	remaining := d.Remaining()
	if amount.GreaterThan(remaining) {
		return apperror.NewOverpayment(d.ID.String(), amount.String(), remaining.String())
	}

	d.PaidAmount = d.PaidAmount.Add(amount)
	d.UpdatedAt = now
	switch {
	case d.PaidAmount.GreaterThanOrEqual(d.Amount):
		d.Status = StatusPaid
		d.PaidDate = &now
	case d.PaidAmount.IsPositive():
		d.Status = StatusPartiallyPaid
	}
	return nil
}

// Cancel closes an unpaid debt.
func (d *Debt) Cancel(now time.Time) error {
	if d.Status == StatusPaid {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "paid debt cannot be cancelled").
			WithField("status", string(d.Status))
	}
	d.Status = StatusCancelled
	d.UpdatedAt = now
	return nil
}

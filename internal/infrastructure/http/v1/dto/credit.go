package dto

import (
	"time"

	"shopledger/internal/core/types"
	"shopledger/internal/domain/credit"
)

// PaymentRequest applies a payment to a debt. Method defaults to cash.
type PaymentRequest struct {
	Amount types.Money `json:"amount"`
	Method string      `json:"method"`
	Note   *string     `json:"note"`
}

// ToInput converts to the domain input.
func (r *PaymentRequest) ToInput() credit.PaymentInput {
	return credit.PaymentInput{
		Amount: r.Amount,
		Method: credit.PaymentMethod(r.Method),
		Note:   r.Note,
	}
}

// DebtListQuery filters debt lists.
type DebtListQuery struct {
	PageQuery
	CustomerID string `form:"customerId"`
	Status     string `form:"status"`
	Overdue    string `form:"overdue"`
}

// ToFilter converts to the domain filter.
func (q DebtListQuery) ToFilter() (credit.DebtFilter, error) {
	customerID, err := ParseOptionalID("customerId", q.CustomerID)
	if err != nil {
		return credit.DebtFilter{}, err
	}
	return credit.DebtFilter{
		CustomerID: customerID,
		Status:     credit.Status(q.Status),
		Overdue:    ParseOptionalBool(q.Overdue),
		Page:       q.ToPage(),
	}, nil
}

// DebtResponse is a debt with its derived state on the shop date.
type DebtResponse struct {
	*credit.Debt
	RemainingAmount types.Money `json:"remainingAmount"`
	IsOverdue       bool        `json:"isOverdue"`
	DaysOverdue     int         `json:"daysOverdue"`
}

// DebtMapper returns a mapper evaluating overdue state at today in loc.
func DebtMapper(today time.Time, loc *time.Location) func(*credit.Debt) DebtResponse {
	return func(d *credit.Debt) DebtResponse {
		return DebtResponse{
			Debt:            d,
			RemainingAmount: d.Remaining(),
			IsOverdue:       d.IsOverdue(today),
			DaysOverdue:     d.DaysOverdue(today, loc),
		}
	}
}

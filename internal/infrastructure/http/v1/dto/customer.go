package dto

import (
	"time"

	"shopledger/internal/domain/customer"
)

// CustomerRequest creates or replaces a customer.
type CustomerRequest struct {
	FirstName    string  `json:"firstName" binding:"required"`
	LastName     string  `json:"lastName"`
	Phone        string  `json:"phone" binding:"required"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	BirthDate    *string `json:"birthDate"`
	Gender       *string `json:"gender"`
	Company      *string `json:"company"`
	TaxID        *string `json:"taxId"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"isActive"`
	CustomerType string  `json:"customerType"`
}

// ToInput converts to the domain input. BirthDate is a shop date or RFC 3339.
func (r *CustomerRequest) ToInput(loc *time.Location) (customer.Input, error) {
	birthDate, err := parseOptionalDate("birthDate", r.BirthDate, loc)
	if err != nil {
		return customer.Input{}, err
	}
	var gender *customer.Gender
	if r.Gender != nil && *r.Gender != "" {
		g := customer.Gender(*r.Gender)
		gender = &g
	}
	return customer.Input{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		BirthDate:    birthDate,
		Gender:       gender,
		Company:      r.Company,
		TaxID:        r.TaxID,
		Notes:        r.Notes,
		IsActive:     r.IsActive,
		CustomerType: customer.Type(r.CustomerType),
	}, nil
}

// CustomerListQuery filters customer lists.
type CustomerListQuery struct {
	PageQuery
	Search       string `form:"search"`
	CustomerType string `form:"customerType"`
	IsActive     string `form:"isActive"`
}

// ToFilter converts to the domain filter.
func (q CustomerListQuery) ToFilter() customer.Filter {
	return customer.Filter{
		Search:       q.Search,
		CustomerType: customer.Type(q.CustomerType),
		IsActive:     ParseOptionalBool(q.IsActive),
		Page:         q.ToPage(),
	}
}

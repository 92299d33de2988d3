package dto

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
)

// --- Sales ---

// SaleRequest records a sale. Price defaults to the product's sale price.
type SaleRequest struct {
	ProductID     id.ID          `json:"productId" binding:"required"`
	CustomerID    *id.ID         `json:"customerId"`
	Quantity      types.Quantity `json:"quantity"`
	Price         *types.Money   `json:"price"`
	Discount      types.Money    `json:"discount"`
	Tax           types.Money    `json:"tax"`
	PaymentMethod string         `json:"paymentMethod"`
	Notes         *string        `json:"notes"`
	SaleDate      *string        `json:"saleDate"`
}

// ToInput converts to the domain input.
func (r *SaleRequest) ToInput(loc *time.Location) (ledger.SaleInput, error) {
	saleDate, err := parseOptionalDate("saleDate", r.SaleDate, loc)
	if err != nil {
		return ledger.SaleInput{}, err
	}
	return ledger.SaleInput{
		ProductID:     r.ProductID,
		CustomerID:    r.CustomerID,
		Quantity:      r.Quantity,
		Price:         r.Price,
		Discount:      r.Discount,
		Tax:           r.Tax,
		PaymentMethod: ledger.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		SaleDate:      saleDate,
	}, nil
}

// VoidSaleRequest picks cancelled (default) or refunded.
type VoidSaleRequest struct {
	Status string `json:"status"`
}

// TargetStatus returns the requested void status.
func (r *VoidSaleRequest) TargetStatus() ledger.SaleStatus {
	if r.Status == "" {
		return ledger.SaleStatusCancelled
	}
	return ledger.SaleStatus(r.Status)
}

// SaleListQuery filters sale lists.
type SaleListQuery struct {
	PageQuery
	DateRangeQuery
	ProductID     string `form:"productId"`
	CustomerID    string `form:"customerId"`
	Status        string `form:"status"`
	PaymentMethod string `form:"paymentMethod"`
}

// ToFilter converts to the domain filter.
func (q SaleListQuery) ToFilter(loc *time.Location) (ledger.SaleFilter, error) {
	dates, err := q.ToRange(loc)
	if err != nil {
		return ledger.SaleFilter{}, err
	}
	productID, err := ParseOptionalID("productId", q.ProductID)
	if err != nil {
		return ledger.SaleFilter{}, err
	}
	customerID, err := ParseOptionalID("customerId", q.CustomerID)
	if err != nil {
		return ledger.SaleFilter{}, err
	}
	return ledger.SaleFilter{
		DateRange:     dates,
		ProductID:     productID,
		CustomerID:    customerID,
		Status:        ledger.SaleStatus(q.Status),
		PaymentMethod: ledger.PaymentMethod(q.PaymentMethod),
		Page:          q.ToPage(),
	}, nil
}

// SaleResponse is a sale with its settlement state.
type SaleResponse struct {
	*ledger.Sale
	RemainingAmount types.Money `json:"remainingAmount"`
	IsPaid          bool        `json:"isPaid"`
}

// FromSale creates a SaleResponse.
func FromSale(s *ledger.Sale) SaleResponse {
	return SaleResponse{
		Sale:            s,
		RemainingAmount: s.RemainingAmount(),
		IsPaid:          s.IsPaid(),
	}
}

// --- Purchases ---

// PurchaseRequest records a purchase. Status defaults to pending.
type PurchaseRequest struct {
	ProductID     id.ID          `json:"productId" binding:"required"`
	SupplierID    *id.ID         `json:"supplierId"`
	Quantity      types.Quantity `json:"quantity"`
	Price         types.Money    `json:"price"`
	Status        string         `json:"status"`
	InvoiceNumber *string        `json:"invoiceNumber"`
	DeliveryDate  *string        `json:"deliveryDate"`
	ExpiryDate    *string        `json:"expiryDate"`
	Notes         *string        `json:"notes"`
	PurchaseDate  *string        `json:"purchaseDate"`
}

// ToInput converts to the domain input.
func (r *PurchaseRequest) ToInput(loc *time.Location) (ledger.PurchaseInput, error) {
	delivery, err := parseOptionalDate("deliveryDate", r.DeliveryDate, loc)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	expiry, err := parseOptionalDate("expiryDate", r.ExpiryDate, loc)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	purchaseDate, err := parseOptionalDate("purchaseDate", r.PurchaseDate, loc)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	return ledger.PurchaseInput{
		ProductID:     r.ProductID,
		SupplierID:    r.SupplierID,
		Quantity:      r.Quantity,
		Price:         r.Price,
		Status:        ledger.PurchaseStatus(r.Status),
		InvoiceNumber: r.InvoiceNumber,
		DeliveryDate:  delivery,
		ExpiryDate:    expiry,
		Notes:         r.Notes,
		PurchaseDate:  purchaseDate,
	}, nil
}

// PurchaseStatusRequest moves a purchase through its lifecycle.
type PurchaseStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PurchaseListQuery filters purchase lists.
type PurchaseListQuery struct {
	PageQuery
	DateRangeQuery
	ProductID  string `form:"productId"`
	SupplierID string `form:"supplierId"`
	Status     string `form:"status"`
}

// ToFilter converts to the domain filter.
func (q PurchaseListQuery) ToFilter(loc *time.Location) (ledger.PurchaseFilter, error) {
	dates, err := q.ToRange(loc)
	if err != nil {
		return ledger.PurchaseFilter{}, err
	}
	productID, err := ParseOptionalID("productId", q.ProductID)
	if err != nil {
		return ledger.PurchaseFilter{}, err
	}
	supplierID, err := ParseOptionalID("supplierId", q.SupplierID)
	if err != nil {
		return ledger.PurchaseFilter{}, err
	}
	return ledger.PurchaseFilter{
		DateRange:  dates,
		ProductID:  productID,
		SupplierID: supplierID,
		Status:     ledger.PurchaseStatus(q.Status),
		Page:       q.ToPage(),
	}, nil
}

// PurchaseResponse adds the unit price.
type PurchaseResponse struct {
	*ledger.Purchase
	UnitPrice types.Money `json:"unitPrice"`
}

// FromPurchase creates a PurchaseResponse.
func FromPurchase(p *ledger.Purchase) PurchaseResponse {
	return PurchaseResponse{Purchase: p, UnitPrice: p.UnitPrice()}
}

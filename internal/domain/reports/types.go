package reports

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// SalesReportFilter selects the sales of one period.
type SalesReportFilter struct {
	// Period: day, week, month, year
	Period string
	// Anchor is any instant inside the period (defaults to now)
	Anchor *time.Time

	// Status limits rows to one sale status; empty means completed
	Status string
}

// SaleRow is one line of the sales report.
type SaleRow struct {
	SaleID        id.ID          `db:"sale_id" json:"saleId"`
	InvoiceNumber string         `db:"invoice_number" json:"invoiceNumber"`
	SaleDate      time.Time      `db:"sale_date" json:"saleDate"`
	ProductName   string         `db:"product_name" json:"productName"`
	SKU           string         `db:"sku" json:"sku"`
	CustomerName  *string        `db:"customer_name" json:"customerName,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Price         types.Money    `db:"price" json:"price"`
	Discount      types.Money    `db:"discount" json:"discount"`
	Tax           types.Money    `db:"tax" json:"tax"`
	Total         types.Money    `db:"total" json:"total"`
	PaidAmount    types.Money    `db:"paid_amount" json:"paidAmount"`
	PaymentMethod string         `db:"payment_method" json:"paymentMethod"`
	Status        string         `db:"status" json:"status"`

	// CurrentCost is the product's purchase price now, not at sale time.
	CurrentCost types.Money `db:"current_cost" json:"-"`
	Profit      types.Money `db:"-" json:"profit"`
}

// Totals summarises a sales report.
type Totals struct {
	SalesCount  int                    `json:"salesCount"`
	Quantity    types.Quantity         `json:"quantity"`
	Revenue     types.Money            `json:"revenue"`
	Discount    types.Money            `json:"discount"`
	Tax         types.Money            `json:"tax"`
	Paid        types.Money            `json:"paid"`
	Outstanding types.Money            `json:"outstanding"`
	Profit      types.Money            `json:"profit"`
	ByMethod    map[string]types.Money `json:"byMethod"`
}

// SalesReport is the payload handed to the report renderer.
type SalesReport struct {
	Period string    `json:"period"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Rows   []SaleRow `json:"rows"`
	Totals Totals    `json:"totals"`
}

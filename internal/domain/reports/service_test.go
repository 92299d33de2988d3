package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/reports"
)

func TestSalesReport(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "R1", 20, "10", "15")
	c := env.Customer(t, "Kamola", "321")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(2), PaymentMethod: ledger.PaymentCard})
	require.NoError(t, err)
	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID: product.ID, CustomerID: &c.ID, Quantity: types.Qty(1), PaymentMethod: ledger.PaymentCredit,
		Discount: types.MustMoney("5"),
	})
	require.NoError(t, err)
	voided, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(1)})
	require.NoError(t, err)
	_, err = env.Ledger.VoidSale(env.Ctx, voided.ID, ledger.SaleStatusCancelled)
	require.NoError(t, err)

	lastWeek := apptest.Epoch.AddDate(0, 0, -7)
	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(1), SaleDate: &lastWeek})
	require.NoError(t, err)

	report, err := env.Reports.SalesReport(env.Ctx, reports.SalesReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "day", report.Period)
	assert.Equal(t, apptest.Epoch.Truncate(24*time.Hour), report.From)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "INV-20240115-0001", report.Rows[0].InvoiceNumber)
	assert.Equal(t, "Product R1", report.Rows[0].ProductName)
	assert.Nil(t, report.Rows[0].CustomerName)
	require.NotNil(t, report.Rows[1].CustomerName)
	assert.Equal(t, "Kamola Test", *report.Rows[1].CustomerName)

	totals := report.Totals
	assert.Equal(t, 2, totals.SalesCount)
	assert.True(t, totals.Quantity.Equal(types.Qty(3)))
	assert.True(t, totals.Revenue.Equal(types.MustMoney("40")), totals.Revenue.String())
	assert.True(t, totals.Discount.Equal(types.MustMoney("5")))
	assert.True(t, totals.Outstanding.Equal(types.MustMoney("10")))
	assert.True(t, totals.Profit.Equal(types.MustMoney("15")))
	assert.True(t, totals.ByMethod["card"].Equal(types.MustMoney("30")))

	cancelled, err := env.Reports.SalesReport(env.Ctx, reports.SalesReportFilter{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, cancelled.Rows, 1)

	month, err := env.Reports.SalesReport(env.Ctx, reports.SalesReportFilter{Period: "month"})
	require.NoError(t, err)
	assert.Len(t, month.Rows, 3)

	_, err = env.Reports.SalesReport(env.Ctx, reports.SalesReportFilter{Period: "decade"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSummarize_Empty(t *testing.T) {
	totals := reports.Summarize(nil)
	assert.Zero(t, totals.SalesCount)
	assert.True(t, totals.Revenue.IsZero())
	assert.Empty(t, totals.ByMethod)
}

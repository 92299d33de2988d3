package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
)

func TestSaleRepo_ApplyFilter(t *testing.T) {
	repo := NewSaleRepo(nil)
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	sql, args, err := repo.applyFilter(repo.Builder().Select("id").From("sales"), ledger.SaleFilter{
		DateRange:     filter.DateRange{From: &from, To: &to},
		Status:        ledger.SaleStatusCompleted,
		PaymentMethod: ledger.PaymentCredit,
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM sales WHERE sale_date >= $1 AND sale_date < $2 AND status = $3 AND payment_method = $4", sql)
	assert.Equal(t, []any{from, to, ledger.SaleStatusCompleted, ledger.PaymentCredit}, args)
}

func TestPurchaseRepo_ApplyFilter_OpenRange(t *testing.T) {
	repo := NewPurchaseRepo(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.applyFilter(repo.Builder().Select("id").From("purchases"), ledger.PurchaseFilter{
		DateRange: filter.DateRange{From: &from},
		Status:    ledger.PurchaseStatusReceived,
	}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM purchases WHERE purchase_date >= $1 AND status = $2", sql)
	assert.Equal(t, []any{from, ledger.PurchaseStatusReceived}, args)
}

func TestDebtRepo_ApplyFilter_Overdue(t *testing.T) {
	repo := NewDebtRepo(nil)
	today := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	overdue := true
	sql, args, err := repo.applyFilter(repo.Builder().Select("id").From("debts"),
		credit.DebtFilter{Overdue: &overdue, Today: today}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM debts WHERE (due_date < $1 AND status <> $2)", sql)
	assert.Equal(t, []any{today, credit.StatusPaid}, args)

	overdue = false
	sql, _, err = repo.applyFilter(repo.Builder().Select("id").From("debts"),
		credit.DebtFilter{Overdue: &overdue, Today: today}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM debts WHERE (due_date >= $1 OR status = $2)", sql)
}

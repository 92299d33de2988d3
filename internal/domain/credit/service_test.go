package credit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/ledger"
)

func creditSale(t *testing.T, env *apptest.Env, qty int64) *credit.Debt {
	t.Helper()
	product := env.Product(t, "ABC1", 10, "100", "150")
	buyer := env.Customer(t, "Aziz", "998901234567")
	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID:     product.ID,
		CustomerID:    &buyer.ID,
		Quantity:      types.Qty(qty),
		PaymentMethod: ledger.PaymentCredit,
	})
	require.NoError(t, err)

	debts, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{CustomerID: &buyer.ID})
	require.NoError(t, err)
	require.Len(t, debts.Items, 1)
	return debts.Items[0]
}

func TestApplyPayment_FullThenOverpay(t *testing.T) {
	env := apptest.New(t)
	debt := creditSale(t, env, 7)

	partial, err := env.Credit.ApplyPayment(env.Ctx, debt.ID, credit.PaymentInput{Amount: types.MustMoney("50")})
	require.NoError(t, err)
	assert.Equal(t, credit.StatusPartiallyPaid, partial.Status)

	paid, err := env.Credit.ApplyPayment(env.Ctx, debt.ID, credit.PaymentInput{
		Amount: types.MustMoney("1000"),
		Method: credit.MethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, credit.StatusPaid, paid.Status)
	assert.True(t, paid.Remaining().IsZero())
	assert.NotNil(t, paid.PaidDate)

	_, err = env.Credit.ApplyPayment(env.Ctx, debt.ID, credit.PaymentInput{Amount: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpayment))

	got, err := env.Credit.GetDebt(env.Ctx, debt.ID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 2)
	assert.True(t, got.Payments[0].Amount.Equal(types.MustMoney("50")))
	assert.Equal(t, credit.MethodCash, got.Payments[0].Method)
	assert.Equal(t, credit.MethodCard, got.Payments[1].Method)
}

func TestApplyPayment_UnknownMethod(t *testing.T) {
	env := apptest.New(t)
	debt := creditSale(t, env, 1)

	_, err := env.Credit.ApplyPayment(env.Ctx, debt.ID, credit.PaymentInput{
		Amount: types.MustMoney("1"),
		Method: "cheque",
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPayment))
}

func TestCancelDebt(t *testing.T) {
	env := apptest.New(t)
	debt := creditSale(t, env, 2)

	cancelled, err := env.Credit.CancelDebt(env.Ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, credit.StatusCancelled, cancelled.Status)

	again, err := env.Credit.CancelDebt(env.Ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, credit.StatusCancelled, again.Status)

	_, err = env.Credit.ApplyPayment(env.Ctx, debt.ID, credit.PaymentInput{Amount: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPayment))
}

func TestMarkOverdue_OnlyUntouchedPendingDebts(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "P1", 100, "1", "2")
	a := env.Customer(t, "A", "111")
	b := env.Customer(t, "B", "222")

	sale := func(customerID id.ID) {
		_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
			ProductID:     product.ID,
			CustomerID:    &customerID,
			Quantity:      types.Qty(1),
			PaymentMethod: ledger.PaymentCredit,
		})
		require.NoError(t, err)
	}
	sale(a.ID)
	sale(b.ID)

	bDebts, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{CustomerID: &b.ID})
	require.NoError(t, err)
	_, err = env.Credit.ApplyPayment(env.Ctx, bDebts.Items[0].ID, credit.PaymentInput{Amount: types.MustMoney("0.50")})
	require.NoError(t, err)

	n, err := env.Credit.MarkOverdue(env.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.Clock.Advance(31 * 24 * time.Hour)
	n, err = env.Credit.MarkOverdue(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = env.Credit.MarkOverdue(env.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	overdue := true
	list, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{Overdue: &overdue})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2, "partially paid debt past due counts as overdue")

	list, err = env.Credit.ListDebts(env.Ctx, credit.DebtFilter{Status: credit.StatusOverdue})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, a.ID, list.Items[0].CustomerID)
}

func TestIssueForSale_ZeroTotalIsPaid(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "FREE", 5, "0", "0")
	buyer := env.Customer(t, "Z", "333")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID:     product.ID,
		CustomerID:    &buyer.ID,
		Quantity:      types.Qty(1),
		PaymentMethod: ledger.PaymentCredit,
	})
	require.NoError(t, err)

	debts, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{CustomerID: &buyer.ID})
	require.NoError(t, err)
	require.Len(t, debts.Items, 1)
	assert.Equal(t, credit.StatusPaid, debts.Items[0].Status)
}

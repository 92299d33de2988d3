package customer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/ledger"
)

func TestCreate_NormalizesPhoneAndRejectsDuplicates(t *testing.T) {
	env := apptest.New(t)

	c := env.Customer(t, "Aziz", "+998 (90) 123-45-67")
	assert.Equal(t, "998901234567", c.Phone)
	assert.Equal(t, customer.TypeRegular, c.CustomerType)
	assert.True(t, c.IsActive)

	_, err := env.Customers.Create(env.Ctx, customer.Input{FirstName: "Other", Phone: "998-90-123-45-67"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateCustomer))

	// phones are unique across all shops
	other := env.AsOwner(id.New())
	_, err = env.Customers.Create(other, customer.Input{FirstName: "Other", Phone: "998901234567"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateCustomer))

	_, err = env.Customers.Create(env.Ctx, customer.Input{FirstName: "NoPhone", Phone: "n/a"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdate_KeepsStatistics(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "P1", 10, "1", "2")
	c := env.Customer(t, "Lola", "111")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, CustomerID: &c.ID, Quantity: types.Qty(2)})
	require.NoError(t, err)

	inactive := false
	updated, err := env.Customers.Update(env.Ctx, c.ID, customer.Input{
		FirstName:    "Lola",
		LastName:     "Karimova",
		Phone:        "112",
		IsActive:     &inactive,
		CustomerType: customer.TypeVIP,
	})
	require.NoError(t, err)
	assert.Equal(t, "112", updated.Phone)
	assert.False(t, updated.IsActive)

	got, err := env.Customers.Get(env.Ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lola Karimova", got.FullName)
	assert.Equal(t, 1, got.TotalPurchases)
	assert.True(t, got.TotalSpent.Equal(types.MustMoney("4")))
}

func TestRefreshStatistics_CountsCompletedSalesOnly(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "P1", 100, "100", "600000")
	c := env.Customer(t, "Rich", "777")

	var last *ledger.Sale
	for range 2 {
		s, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
			ProductID:     product.ID,
			CustomerID:    &c.ID,
			Quantity:      types.Qty(1),
			PaymentMethod: ledger.PaymentCredit,
		})
		require.NoError(t, err)
		last = s
	}
	_, err := env.Ledger.VoidSale(env.Ctx, last.ID, ledger.SaleStatusCancelled)
	require.NoError(t, err)

	stats, err := env.Customers.RefreshStatistics(env.Ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPurchases)
	assert.True(t, stats.TotalSpent.Equal(types.MustMoney("600000")))
	assert.True(t, stats.TotalDebt.Equal(types.MustMoney("600000")))
	assert.Equal(t, 1, stats.DebtCount)
	assert.Equal(t, customer.TierBronze, stats.LoyaltyTier)

	again, err := env.Customers.RefreshStatistics(env.Ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalPurchases, again.TotalPurchases)
	assert.True(t, stats.TotalSpent.Equal(again.TotalSpent))
	assert.Equal(t, stats.LastPurchase, again.LastPurchase)
}

func TestDelete_CascadesLedger(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "P1", 10, "1", "2")
	c := env.Customer(t, "Gone", "555")
	keep := env.Customer(t, "Stay", "556")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID: product.ID, CustomerID: &c.ID, Quantity: types.Qty(1), PaymentMethod: ledger.PaymentCredit,
	})
	require.NoError(t, err)
	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, CustomerID: &keep.ID, Quantity: types.Qty(1)})
	require.NoError(t, err)
	_, err = env.Ledger.RecordPurchase(env.Ctx, ledger.PurchaseInput{
		ProductID: product.ID, SupplierID: &c.ID, Quantity: types.Qty(1), Price: types.MustMoney("1"),
	})
	require.NoError(t, err)

	require.NoError(t, env.Customers.Delete(env.Ctx, c.ID))

	_, err = env.Customers.Get(env.Ctx, c.ID)
	assert.True(t, apperror.IsNotFound(err))

	sales, err := env.Ledger.ListSales(env.Ctx, ledger.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, sales.Items, 1)
	assert.Equal(t, keep.ID, *sales.Items[0].CustomerID)

	purchases, err := env.Ledger.ListPurchases(env.Ctx, ledger.PurchaseFilter{})
	require.NoError(t, err)
	assert.Empty(t, purchases.Items)

	debts, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{})
	require.NoError(t, err)
	assert.Empty(t, debts.Items)
}

func TestList_FiltersAndSearch(t *testing.T) {
	env := apptest.New(t)
	env.Customer(t, "Anvar", "101")
	env.Customer(t, "Bobur", "102")
	company := "Anvar Trading"
	_, err := env.Customers.Create(env.Ctx, customer.Input{
		FirstName: "Dilshod", Phone: "103", Company: &company, CustomerType: customer.TypeWholesale,
	})
	require.NoError(t, err)

	res, err := env.Customers.List(env.Ctx, customer.Filter{Search: "anvar"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Anvar", res.Items[0].FirstName)
	assert.Equal(t, "Dilshod", res.Items[1].FirstName)

	res, err = env.Customers.List(env.Ctx, customer.Filter{CustomerType: customer.TypeWholesale})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

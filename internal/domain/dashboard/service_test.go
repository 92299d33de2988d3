package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/dashboard"
	"shopledger/internal/domain/ledger"
)

type mapCache struct {
	items map[string]dashboard.Stats
	gets  int
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]dashboard.Stats)}
}

func (c *mapCache) key(ownerID id.ID, date time.Time) string {
	return ownerID.String() + "/" + calendar.FormatDate(date)
}

func (c *mapCache) Get(_ context.Context, ownerID id.ID, date time.Time) (*dashboard.Stats, bool, error) {
	c.gets++
	s, ok := c.items[c.key(ownerID, date)]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *mapCache) Set(_ context.Context, s *dashboard.Stats) error {
	c.items[c.key(s.OwnerID, s.Date)] = *s
	return nil
}

func seedDay(t *testing.T, env *apptest.Env) {
	t.Helper()
	product := env.Product(t, "P1", 10, "10", "15")
	c := env.Customer(t, "Buyer", "900")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(2)})
	require.NoError(t, err)
	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID: product.ID, CustomerID: &c.ID, Quantity: types.Qty(1), PaymentMethod: ledger.PaymentCredit,
	})
	require.NoError(t, err)
	voided, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(1)})
	require.NoError(t, err)
	_, err = env.Ledger.VoidSale(env.Ctx, voided.ID, ledger.SaleStatusRefunded)
	require.NoError(t, err)

	_, err = env.Ledger.RecordPurchase(env.Ctx, ledger.PurchaseInput{
		ProductID: product.ID, Quantity: types.Qty(5), Price: types.MustMoney("8"), Status: ledger.PurchaseStatusReceived,
	})
	require.NoError(t, err)
	_, err = env.Ledger.RecordPurchase(env.Ctx, ledger.PurchaseInput{
		ProductID: product.ID, Quantity: types.Qty(5), Price: types.MustMoney("8"),
	})
	require.NoError(t, err)
}

func TestRecomputeDailySnapshot(t *testing.T) {
	env := apptest.New(t)
	seedDay(t, env)

	stats, err := env.Dashboard.RecomputeDailySnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15", calendar.FormatDate(stats.Date))
	assert.Equal(t, 2, stats.SalesCount)
	assert.True(t, stats.TotalSales.Equal(types.MustMoney("45")), stats.TotalSales.String())
	assert.True(t, stats.TotalProfit.Equal(types.MustMoney("15")), stats.TotalProfit.String())
	assert.Equal(t, 1, stats.PurchaseCount)
	assert.True(t, stats.TotalPurchases.Equal(types.MustMoney("40")))
	assert.Equal(t, 1, stats.TotalCustomers)
	assert.Equal(t, 1, stats.NewCustomers)
	assert.Equal(t, 1, stats.TotalProducts)
	assert.True(t, stats.TotalDebt.Equal(types.MustMoney("15")))

	again, err := env.Dashboard.RecomputeDailySnapshot(env.Ctx, apptest.Epoch.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, stats.SalesCount, again.SalesCount)
	assert.True(t, stats.TotalSales.Equal(again.TotalSales))
	assert.True(t, stats.TotalDebt.Equal(again.TotalDebt))

	list, err := env.Dashboard.ListSnapshots(env.Ctx, apptest.Epoch, apptest.Epoch)
	require.NoError(t, err)
	assert.Len(t, list, 1, "recomputing upserts one row per day")
}

func TestRecompute_IsolatesOwners(t *testing.T) {
	env := apptest.New(t)
	seedDay(t, env)

	stats, err := env.Dashboard.RecomputeForOwner(context.Background(), id.New(), apptest.Epoch)
	require.NoError(t, err)
	assert.Zero(t, stats.SalesCount)
	assert.Zero(t, stats.TotalProducts)
	assert.True(t, stats.TotalSales.IsZero())
}

func TestGetSnapshot_ComputesOnMissAndUsesCache(t *testing.T) {
	env := apptest.New(t)
	seedDay(t, env)

	cache := newMapCache()
	svc := dashboard.NewService(env.Backend.Dashboard, cache, env.Clock)

	first, err := svc.GetSnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, first.SalesCount)
	require.Len(t, cache.items, 1)

	// a later sale is not visible until the snapshot is recomputed
	product := env.Product(t, "P2", 1, "1", "2")
	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: product.ID, Quantity: types.Qty(1)})
	require.NoError(t, err)

	cached, err := svc.GetSnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.SalesCount)

	fresh, err := svc.RecomputeDailySnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.SalesCount)

	served, err := svc.GetSnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)
	assert.Equal(t, 3, served.SalesCount)
}

func TestListSnapshots(t *testing.T) {
	env := apptest.New(t)
	seedDay(t, env)

	next := apptest.Epoch.AddDate(0, 0, 1)
	_, err := env.Dashboard.RecomputeDailySnapshot(env.Ctx, next)
	require.NoError(t, err)
	_, err = env.Dashboard.RecomputeDailySnapshot(env.Ctx, apptest.Epoch)
	require.NoError(t, err)

	list, err := env.Dashboard.ListSnapshots(env.Ctx, apptest.Epoch.AddDate(0, 0, -3), next.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-15", calendar.FormatDate(list[0].Date))
	assert.Equal(t, "2024-01-16", calendar.FormatDate(list[1].Date))
	assert.Zero(t, list[1].SalesCount)
	assert.Zero(t, list[1].NewCustomers)
	assert.Equal(t, 1, list[1].TotalCustomers)

	_, err = env.Dashboard.ListSnapshots(env.Ctx, next, apptest.Epoch)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.Dashboard.ListSnapshots(env.Ctx, apptest.Epoch, apptest.Epoch.AddDate(2, 0, 0))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRecompute_RequiresOwner(t *testing.T) {
	env := apptest.New(t)
	_, err := env.Dashboard.RecomputeDailySnapshot(context.Background(), apptest.Epoch)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

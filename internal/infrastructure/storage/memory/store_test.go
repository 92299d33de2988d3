package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/numerator"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/rollup"
)

func newProduct(owner id.ID, sku string) *catalog.Product {
	return &catalog.Product{
		ID:            id.New(),
		OwnerID:       owner,
		Name:          "Item " + sku,
		SKU:           sku,
		Unit:          catalog.UnitPiece,
		PurchasePrice: types.MustMoney("10"),
		SalePrice:     types.MustMoney("15"),
		Quantity:      types.Qty(4),
		MinQuantity:   types.Qty(5),
		Status:        catalog.StatusLowStock,
		TotalSold:     types.Zero(),
		TotalRevenue:  types.Zero(),
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	store := NewStore()
	txm := NewTxManager(store)
	products := NewProductRepo(store)
	ctx := context.Background()
	owner := id.New()

	boom := errors.New("boom")
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, products.Create(ctx, newProduct(owner, "A-1")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	res, err := products.List(ctx, owner, catalog.ProductFilter{Page: filter.Page{Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestTxManager_NestedJoinsOuter(t *testing.T) {
	store := NewStore()
	txm := NewTxManager(store)
	gen := NewGenerator(store)
	ctx := context.Background()
	cfg := numerator.InvoiceConfig("shop")
	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return txm.RunInTransaction(ctx, func(ctx context.Context) error {
			_, err := gen.NextValue(ctx, cfg, day)
			return err
		})
	})
	require.NoError(t, err)

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		_, err := gen.NextValue(ctx, cfg, day)
		require.NoError(t, err)
		return errors.New("rollback")
	})
	require.Error(t, err)

	n, err := gen.NextValue(ctx, cfg, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGenerator_ConcurrentValuesAreDistinct(t *testing.T) {
	store := NewStore()
	txm := NewTxManager(store)
	gen := NewGenerator(store)
	cfg := numerator.InvoiceConfig("shop")
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
				n, err := gen.NextValue(ctx, cfg, day)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[n] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 100)
}

func TestProductRepo_DuplicateSKUPerOwner(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	ctx := context.Background()
	owner := id.New()

	require.NoError(t, products.Create(ctx, newProduct(owner, "ABC1")))
	err := products.Create(ctx, newProduct(owner, "ABC1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	require.NoError(t, products.Create(ctx, newProduct(id.New(), "ABC1")))
}

func TestProductRepo_ListOrdersAndPages(t *testing.T) {
	store := NewStore()
	products := NewProductRepo(store)
	ctx := context.Background()
	owner := id.New()

	for _, sku := range []string{"C", "A", "B"} {
		require.NoError(t, products.Create(ctx, newProduct(owner, sku)))
	}

	res, err := products.List(ctx, owner, catalog.ProductFilter{Page: filter.Page{OrderBy: "-sku", Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "C", res.Items[0].SKU)
	assert.Equal(t, "B", res.Items[1].SKU)
}

func TestQueue_RelayRetriesThenDrops(t *testing.T) {
	store := NewStore()
	q := NewQueue(store)
	ctx := context.Background()
	job := rollup.CustomerStats(id.New(), id.New())

	require.NoError(t, q.Enqueue(ctx, job, errors.New("first")))

	calls := 0
	failing := func(context.Context, rollup.Job) error {
		calls++
		return errors.New("still failing")
	}
	for range maxRetries {
		_, err := q.Relay(ctx, failing)
		require.NoError(t, err)
	}
	assert.Equal(t, maxRetries, calls)
	assert.Zero(t, q.Len())

	require.NoError(t, q.Enqueue(ctx, job, nil))
	done, err := q.Relay(ctx, func(context.Context, rollup.Job) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, done)
	assert.Zero(t, q.Len())
}

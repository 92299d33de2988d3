// Package apptest builds memory-backed services for package tests.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopledger/internal/app"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/customer"
	"shopledger/internal/infrastructure/storage/memory"
)

// Epoch is the default test instant.
var Epoch = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// Env is one isolated shop.
type Env struct {
	*app.Services
	Store   *memory.Store
	Backend app.Backend
	Clock   *calendar.ManualClock
	OwnerID id.ID
	Ctx     context.Context
}

// New returns a fresh environment with its own owner. Options may adjust the
// service options before wiring.
func New(t testing.TB, options ...func(*app.Options)) *Env {
	t.Helper()

	store := memory.NewStore()
	backend := app.MemoryBackend(store)
	clock := calendar.NewManualClock(Epoch, time.UTC)

	authCfg := auth.DefaultServiceConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	opts := app.Options{
		Clock: clock,
		JWT:   auth.DefaultJWTConfig("test-secret"),
		Auth:  authCfg,
	}
	for _, o := range options {
		o(&opts)
	}
	svc := app.NewServices(backend, opts)

	ownerID := id.New()
	return &Env{
		Services: svc,
		Store:    store,
		Backend:  backend,
		Clock:    clock,
		OwnerID:  ownerID,
		Ctx:      appctx.WithOwner(context.Background(), ownerID),
	}
}

// AsOwner returns a context for another owner of the same store.
func (e *Env) AsOwner(ownerID id.ID) context.Context {
	return appctx.WithOwner(context.Background(), ownerID)
}

// Product creates a product with the given SKU, stock, cost and sale price.
func (e *Env) Product(t testing.TB, sku string, qty int64, cost, price string) *catalog.Product {
	t.Helper()
	q := types.Qty(qty)
	p, err := e.Catalog.CreateProduct(e.Ctx, catalog.ProductInput{
		Name:          "Product " + sku,
		SKU:           sku,
		Unit:          catalog.UnitPiece,
		PurchasePrice: types.MustMoney(cost),
		SalePrice:     types.MustMoney(price),
		Quantity:      &q,
	})
	require.NoError(t, err)
	return p
}

// Customer creates an active customer with the given phone.
func (e *Env) Customer(t testing.TB, first, phone string) *customer.Customer {
	t.Helper()
	c, err := e.Customers.Create(e.Ctx, customer.Input{
		FirstName: first,
		LastName:  "Test",
		Phone:     phone,
	})
	require.NoError(t, err)
	return c
}

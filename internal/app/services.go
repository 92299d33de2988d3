// Package app assembles the shop services on top of a storage backend.
package app

import (
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/numerator"
	"shopledger/internal/core/tx"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/dashboard"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/media"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/rollup"
)

// Backend is one complete set of storage implementations.
type Backend struct {
	TxManager  tx.Manager
	Numerator  numerator.Generator
	Queue      rollup.DurableQueue
	Accounts   auth.AccountRepository
	Categories catalog.CategoryRepository
	Products   catalog.ProductRepository
	History    audit.Store
	Customers  customer.Repository
	Sales      ledger.SaleRepository
	Purchases  ledger.PurchaseRepository
	Debts      credit.Repository
	Dashboard  dashboard.Repository
	Reports    reports.Repository
}

// Options tune the services independently of storage.
type Options struct {
	Clock     calendar.Clock
	JWT       auth.JWTConfig
	Auth      auth.ServiceConfig
	Dashboard dashboard.Cache // optional
	Media     media.Store     // optional
}

// Services is the full set of shop operations.
type Services struct {
	Auth      *auth.Service
	JWT       *auth.JWTService
	Catalog   *catalog.Service
	Customers *customer.Service
	Credit    *credit.Service
	Ledger    *ledger.Service
	Dashboard *dashboard.Service
	Reports   *reports.Service
	Rollups   *rollup.Dispatcher
	Clock     calendar.Clock
}

// NewServices wires every service to b. Rollup handlers are registered on a
// dispatcher backed by b.Queue.
func NewServices(b Backend, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = calendar.NewSystemClock(nil)
	}
	if opts.Auth == (auth.ServiceConfig{}) {
		opts.Auth = auth.DefaultServiceConfig()
	}

	rollups := rollup.NewDispatcher(b.Queue)
	jwtService := auth.NewJWTService(opts.JWT, opts.Clock)

	customers := customer.NewService(b.Customers, b.TxManager, rollups, opts.Clock)
	catalogSvc := catalog.NewService(catalog.ServiceConfig{
		Categories: b.Categories,
		Products:   b.Products,
		History:    b.History,
		Numerator:  b.Numerator,
		TxManager:  b.TxManager,
		Rollups:    rollups,
		Media:      opts.Media,
		Clock:      opts.Clock,
	})
	creditSvc := credit.NewService(b.Debts, b.TxManager, rollups, opts.Clock)
	ledgerSvc := ledger.NewService(ledger.ServiceConfig{
		Sales:     b.Sales,
		Purchases: b.Purchases,
		Inventory: catalogSvc,
		Customers: customers,
		Debts:     creditSvc,
		Numerator: b.Numerator,
		TxManager: b.TxManager,
		Rollups:   rollups,
		Clock:     opts.Clock,
	})

	return &Services{
		Auth:      auth.NewService(b.Accounts, b.TxManager, jwtService, opts.Auth, opts.Clock),
		JWT:       jwtService,
		Catalog:   catalogSvc,
		Customers: customers,
		Credit:    creditSvc,
		Ledger:    ledgerSvc,
		Dashboard: dashboard.NewService(b.Dashboard, opts.Dashboard, opts.Clock),
		Reports:   reports.NewService(b.Reports, opts.Clock),
		Rollups:   rollups,
		Clock:     opts.Clock,
	}
}

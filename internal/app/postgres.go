package app

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/infrastructure/numerator"
	"shopledger/internal/infrastructure/storage/postgres"
	"shopledger/internal/infrastructure/storage/postgres/auth_repo"
	"shopledger/internal/infrastructure/storage/postgres/catalog_repo"
	"shopledger/internal/infrastructure/storage/postgres/document_repo"
	"shopledger/internal/infrastructure/storage/postgres/report_repo"
)

// DefaultOutboxBatch is how many rollup jobs one relay pass claims.
const DefaultOutboxBatch = 100

// PostgresBackend builds a Backend on a connection pool. loc is the shop time
// zone used to read snapshot dates back.
func PostgresBackend(pool *postgres.Pool, loc *time.Location) (Backend, error) {
	txm := postgres.NewTxManager(pool)

	history, err := postgres.NewHistoryStore(txm)
	if err != nil {
		return Backend{}, fmt.Errorf("history store: %w", err)
	}

	return Backend{
		TxManager: txm,
		Numerator: numerator.New(numerator.QuerierFunc(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		})),
		Queue:      postgres.NewQueue(txm, DefaultOutboxBatch),
		Accounts:   auth_repo.NewAccountRepo(txm),
		Categories: catalog_repo.NewCategoryRepo(txm),
		Products:   catalog_repo.NewProductRepo(txm),
		History:    history,
		Customers:  catalog_repo.NewCustomerRepo(txm),
		Sales:      document_repo.NewSaleRepo(txm),
		Purchases:  document_repo.NewPurchaseRepo(txm),
		Debts:      document_repo.NewDebtRepo(txm),
		Dashboard:  report_repo.NewDashboardRepo(txm, loc),
		Reports:    report_repo.NewReportRepo(txm),
	}, nil
}

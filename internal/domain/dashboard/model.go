// Package dashboard recomputes the per-day statistics snapshot.
//
// A snapshot is a pure function of the ledger at the time it is computed. It is
// never incremented and never written back into ledger, credit, customer or
// catalog state, so it can be recomputed at any time and any number of times.
package dashboard

import (
	"context"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Stats is one owner's snapshot for one calendar date.
type Stats struct {
	OwnerID        id.ID       `db:"owner_id" json:"-"`
	Date           time.Time   `db:"date" json:"date"`
	TotalSales     types.Money `db:"total_sales" json:"totalSales"`
	SalesCount     int         `db:"sales_count" json:"salesCount"`
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
	PurchaseCount  int         `db:"purchase_count" json:"purchaseCount"`
	TotalProfit    types.Money `db:"total_profit" json:"totalProfit"`
	TotalCustomers int         `db:"total_customers" json:"totalCustomers"`
	NewCustomers   int         `db:"new_customers" json:"newCustomers"`
	TotalProducts  int         `db:"total_products" json:"totalProducts"`
	TotalDebt      types.Money `db:"total_debt" json:"totalDebt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// Repository computes and stores snapshots.
type Repository interface {
	// Compute aggregates the ledger for [dayStart, dayEnd) without locks.
	Compute(ctx context.Context, ownerID id.ID, dayStart, dayEnd time.Time) (*Stats, error)

	// Upsert writes the snapshot keyed by (owner, date).
	Upsert(ctx context.Context, s *Stats) error

	Get(ctx context.Context, ownerID id.ID, date time.Time) (*Stats, error)
	List(ctx context.Context, ownerID id.ID, from, to time.Time) ([]*Stats, error)
}

// Cache is a read-through cache in front of Repository.Get.
type Cache interface {
	Get(ctx context.Context, ownerID id.ID, date time.Time) (*Stats, bool, error)
	Set(ctx context.Context, s *Stats) error
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, id.ID, time.Time) (*Stats, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, *Stats) error                           { return nil }

// Package memory is an in-process storage backend used for tests, demos and
// single-user installs. Transactions are serialized under one store-wide lock
// and roll back by restoring a snapshot of every table.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/dashboard"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
)

type snapshotKey struct {
	owner id.ID
	date  string
}

// tables holds every row by value so a shallow map copy is a full snapshot.
type tables struct {
	accounts   map[id.ID]auth.Account
	categories map[id.ID]catalog.Category
	products   map[id.ID]catalog.Product
	customers  map[id.ID]customer.Customer
	sales      map[id.ID]ledger.Sale
	purchases  map[id.ID]ledger.Purchase
	debts      map[id.ID]credit.Debt
	payments   []credit.Payment
	history    []audit.Entry
	snapshots  map[snapshotKey]dashboard.Stats
	sequences  map[string]int64
	outbox     []outboxEntry
}

func newTables() *tables {
	return &tables{
		accounts:   make(map[id.ID]auth.Account),
		categories: make(map[id.ID]catalog.Category),
		products:   make(map[id.ID]catalog.Product),
		customers:  make(map[id.ID]customer.Customer),
		sales:      make(map[id.ID]ledger.Sale),
		purchases:  make(map[id.ID]ledger.Purchase),
		debts:      make(map[id.ID]credit.Debt),
		snapshots:  make(map[snapshotKey]dashboard.Stats),
		sequences:  make(map[string]int64),
	}
}

func (t *tables) clone() *tables {
	return &tables{
		accounts:   maps.Clone(t.accounts),
		categories: maps.Clone(t.categories),
		products:   maps.Clone(t.products),
		customers:  maps.Clone(t.customers),
		sales:      maps.Clone(t.sales),
		purchases:  maps.Clone(t.purchases),
		debts:      maps.Clone(t.debts),
		payments:   slices.Clone(t.payments),
		history:    slices.Clone(t.history),
		snapshots:  maps.Clone(t.snapshots),
		sequences:  maps.Clone(t.sequences),
		outbox:     slices.Clone(t.outbox),
	}
}

// Store is the shared state behind every memory repository.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		data: newTables(),
		now:  time.Now,
	}
}

type txMarker struct{}

// inTx reports whether ctx already holds this store's lock.
func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txMarker{}).(*Store)
	return ok && owner == s
}

// guard locks the store unless ctx runs inside one of its transactions.
func (s *Store) guard(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxManager implements tx.Manager on top of the store lock.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction runs fn under the store lock and restores the previous
// state when fn fails or panics. Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.store.inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	saved := m.store.data.clone()
	defer func() {
		if p := recover(); p != nil {
			m.store.data = saved
			panic(p)
		}
		if err != nil {
			m.store.data = saved
		}
	}()

	return fn(context.WithValue(ctx, txMarker{}, m.store))
}

// sortRows orders rows by the whitelisted fields of orderBy, falling back to id.
func sortRows[T any](rows []T, orderBy string, cmps map[string]func(a, b T) int, byID func(T) id.ID) {
	allowed := make(map[string]bool, len(cmps))
	for k := range cmps {
		allowed[k] = true
	}
	fields := filter.ParseOrder(orderBy, allowed)
	slices.SortStableFunc(rows, func(a, b T) int {
		for _, f := range fields {
			c := cmps[f.Field](a, b)
			if f.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(byID(a).String(), byID(b).String())
	})
}

// page cuts the window out of sorted rows.
func page[T any](rows []T, p filter.Page) filter.ListResult[T] {
	start, end := p.Window(len(rows))
	return filter.ListResult[T]{
		Items:      rows[start:end],
		TotalCount: int64(len(rows)),
		Limit:      p.Limit,
		Offset:     p.Offset,
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cmpTime(a, b time.Time) int { return a.Compare(b) }

func cmpOptTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func cmpString(a, b string) int { return cmp.Compare(a, b) }

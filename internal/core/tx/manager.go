// Package tx provides transaction management abstractions.
// Domain services depend on this interface, not on a concrete database.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
//
// Every public write of the shop core is exactly one RunInTransaction call:
// all validations happen inside fn before anything is committed.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

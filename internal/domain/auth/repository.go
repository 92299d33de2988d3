package auth

import (
	"context"

	"shopledger/internal/core/id"
)

// AccountRepository defines account storage operations.
type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, accountID id.ID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// ListActiveIDs returns every active account; the worker iterates owners with it.
	ListActiveIDs(ctx context.Context) ([]id.ID, error)
}

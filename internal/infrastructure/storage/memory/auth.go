package memory

import (
	"context"
	"slices"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
)

// AccountRepo implements auth.AccountRepository.
type AccountRepo struct {
	store *Store
}

// NewAccountRepo creates an account repository.
func NewAccountRepo(store *Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func (r *AccountRepo) Create(ctx context.Context, a *auth.Account) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	for _, other := range t.accounts {
		if other.Username == a.Username {
			return apperror.NewDuplicate("account", "username", a.Username)
		}
		if other.Email == a.Email {
			return apperror.NewDuplicate("account", "email", a.Email)
		}
	}
	t.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) Update(ctx context.Context, a *auth.Account) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	if _, ok := t.accounts[a.ID]; !ok {
		return apperror.NewNotFound("account", a.ID)
	}
	t.accounts[a.ID] = *a
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*auth.Account, error) {
	defer r.store.guard(ctx)()
	a, ok := r.store.data.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("account", accountID)
	}
	return &a, nil
}

func (r *AccountRepo) find(ctx context.Context, match func(auth.Account) bool, key string) (*auth.Account, error) {
	defer r.store.guard(ctx)()
	for _, a := range r.store.data.accounts {
		if match(a) {
			return &a, nil
		}
	}
	return nil, apperror.NewNotFound("account", key)
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	return r.find(ctx, func(a auth.Account) bool { return a.Username == username }, username)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return r.find(ctx, func(a auth.Account) bool { return a.Email == email }, email)
}

func (r *AccountRepo) ListActiveIDs(ctx context.Context) ([]id.ID, error) {
	defer r.store.guard(ctx)()
	var out []id.ID
	for _, a := range r.store.data.accounts {
		if a.IsActive {
			out = append(out, a.ID)
		}
	}
	slices.SortFunc(out, func(a, b id.ID) int { return cmpString(a.String(), b.String()) })
	return out, nil
}

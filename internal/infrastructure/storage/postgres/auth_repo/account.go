// Package auth_repo provides the PostgreSQL account repository.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/infrastructure/storage/postgres"
)

const accountColumns = `
	id, username, email, password_hash, is_active, last_login_at,
	failed_login_attempts, locked_until, created_at, updated_at`

// AccountRepo implements auth.AccountRepository.
type AccountRepo struct {
	txManager *postgres.TxManager
}

var _ auth.AccountRepository = (*AccountRepo)(nil)

// NewAccountRepo creates a new account repository.
func NewAccountRepo(txManager *postgres.TxManager) *AccountRepo {
	return &AccountRepo{txManager: txManager}
}

func accountUniques(a *auth.Account) []postgres.Unique {
	return []postgres.Unique{
		{Constraint: "accounts_username_key", Field: "username", Value: a.Username},
		{Constraint: "accounts_email_key", Field: "email", Value: a.Email},
	}
}

// Create creates a new account.
func (r *AccountRepo) Create(ctx context.Context, a *auth.Account) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, a.IsActive, a.LastLoginAt,
		a.FailedLoginAttempts, a.LockedUntil, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("insert account: %w", err), "account", accountUniques(a)...)
	}

	return nil
}

// Update writes every mutable column of the account.
func (r *AccountRepo) Update(ctx context.Context, a *auth.Account) error {
	q := r.txManager.GetQuerier(ctx)

	query := `
		UPDATE accounts SET
			username = $2,
			email = $3,
			password_hash = $4,
			is_active = $5,
			last_login_at = $6,
			failed_login_attempts = $7,
			locked_until = $8,
			updated_at = $9
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, a.IsActive,
		a.LastLoginAt, a.FailedLoginAttempts, a.LockedUntil, a.UpdatedAt,
	)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update account: %w", err), "account", accountUniques(a)...)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("account", a.ID)
	}

	return nil
}

// GetByID retrieves an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, accountID id.ID) (*auth.Account, error) {
	return r.getOne(ctx, "id", accountID, accountID)
}

// GetByUsername retrieves an account by its normalized username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	return r.getOne(ctx, "username", username, username)
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return r.getOne(ctx, "email", email, email)
}

// getOne looks an account up by one of the unique columns id, username or email.
func (r *AccountRepo) getOne(ctx context.Context, column string, value, key any) (*auth.Account, error) {
	q := r.txManager.GetQuerier(ctx)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1`

	var a auth.Account
	err := q.QueryRow(ctx, query, value).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsActive, &a.LastLoginAt,
		&a.FailedLoginAttempts, &a.LockedUntil, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("account", key)
	}
	if err != nil {
		return nil, fmt.Errorf("query account: %w", err)
	}

	return &a, nil
}

// ListActiveIDs returns the ids of active accounts in id order.
func (r *AccountRepo) ListActiveIDs(ctx context.Context) ([]id.ID, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx,
		`SELECT id FROM accounts WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[id.ID])
	if err != nil {
		return nil, fmt.Errorf("scan account ids: %w", err)
	}
	return ids, nil
}

package postgres

import (
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"shopledger/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

// mapError turns driver errors into AppErrors where the caller can act on them.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return apperror.NewConflict("unique constraint violated, retry the operation").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeForeignKeyViolation:
		return apperror.NewConflict("referenced record does not exist").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case codeSerialization, codeDeadlock:
		return apperror.NewConflict("concurrent update, retry the operation").WithCause(err)
	}
	return err
}

// Unique names a unique constraint and the field value it protects.
type Unique struct {
	Constraint string
	Field      string
	Value      string
}

// MapError is mapError for the repository subpackages. A unique violation of one
// of uniques becomes a DUPLICATE_ENTRY error on its field.
func MapError(err error, entity string, uniques ...Unique) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		for _, u := range uniques {
			if u.Constraint == pgErr.ConstraintName {
				return apperror.NewDuplicate(entity, u.Field, u.Value).WithCause(err)
			}
		}
	}
	return mapError(err)
}

// NotFound maps an empty result onto NOT_FOUND and wraps everything else.
func NotFound(err error, entity string, key any) error {
	if pgxscan.NotFound(err) {
		return apperror.NewNotFound(entity, key)
	}
	return mapError(err)
}

// IsUniqueViolation reports a unique violation of the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraint
}

// IsNoRows reports an empty single-row result.
func IsNoRows(err error) bool {
	return pgxscan.NotFound(err)
}

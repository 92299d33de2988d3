package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"shopledger/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// migrationLockID serializes concurrent Migrate calls across processes.
const migrationLockID = 7_200_413

// Migrate applies the embedded schema. It is safe to call on every start.
func Migrate(ctx context.Context, txm *TxManager) error {
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		if _, err := q.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "database schema is up to date")
	return nil
}

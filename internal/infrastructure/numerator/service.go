// Package numerator provides the PostgreSQL implementation of sequential numbering.
// It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "shopledger/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierSource resolves the querier for ctx: the open transaction when there is one.
type QuerierSource interface {
	GetQuerier(ctx context.Context) Querier
}

// QuerierFunc adapts a function to QuerierSource.
type QuerierFunc func(ctx context.Context) Querier

func (f QuerierFunc) GetQuerier(ctx context.Context) Querier { return f(ctx) }

// Service hands out counter values from sys_sequences.
//
// The increment is an UPSERT … RETURNING on the caller's transaction, so the row
// stays locked until commit and a rolled back caller gives its number back.
type Service struct {
	source QuerierSource
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service.
func New(source QuerierSource) *Service {
	return &Service{source: source}
}

// NextValue increments and returns the counter for cfg and period.
func (s *Service) NextValue(ctx context.Context, cfg corenumerator.Config, period time.Time) (int64, error) {
	key := corenumerator.BuildKey(cfg, period)

	var num int64
	err := s.source.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next value for %s: %w", key, err)
	}
	return num, nil
}

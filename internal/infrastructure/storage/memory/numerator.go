package memory

import (
	"context"
	"time"

	"shopledger/internal/core/numerator"
)

// Generator implements numerator.Generator on the store's sequence table.
// Inside a transaction the increment rolls back with it.
type Generator struct {
	store *Store
}

// NewGenerator creates a sequence generator.
func NewGenerator(store *Store) *Generator {
	return &Generator{store: store}
}

func (g *Generator) NextValue(ctx context.Context, cfg numerator.Config, period time.Time) (int64, error) {
	defer g.store.guard(ctx)()
	key := numerator.BuildKey(cfg, period)
	g.store.data.sequences[key]++
	return g.store.data.sequences[key], nil
}

package numerator

import (
	"context"
	"time"
)

// Generator hands out strictly increasing counter values per key.
//
// Implementations must participate in the transaction carried by ctx so a
// rolled back caller also rolls back the counter.
type Generator interface {
	// NextValue increments and returns the counter for BuildKey(cfg, period).
	NextValue(ctx context.Context, cfg Config, period time.Time) (int64, error)
}

// Next is the formatted convenience form of NextValue.
func Next(ctx context.Context, g Generator, cfg Config, period time.Time) (string, error) {
	n, err := g.NextValue(ctx, cfg, period)
	if err != nil {
		return "", err
	}
	return Format(cfg, period, n), nil
}

package numerator

import (
	"context"
	"sync"
	"time"
)

// MockGenerator is a test implementation of Generator.
// Without NextValueFunc it counts per key in memory.
type MockGenerator struct {
	NextValueFunc func(ctx context.Context, cfg Config, period time.Time) (int64, error)

	mu     sync.Mutex
	values map[string]int64
}

// NextValue implements Generator.
func (m *MockGenerator) NextValue(ctx context.Context, cfg Config, period time.Time) (int64, error) {
	if m.NextValueFunc != nil {
		return m.NextValueFunc(ctx, cfg, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	key := BuildKey(cfg, period)
	m.values[key]++
	return m.values[key], nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)

package memory

import (
	"context"
	"maps"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
)

// HistoryStore implements audit.Store.
type HistoryStore struct {
	store *Store
}

// NewHistoryStore creates a category history store.
func NewHistoryStore(store *Store) *HistoryStore {
	return &HistoryStore{store: store}
}

func (h *HistoryStore) Record(ctx context.Context, entry audit.Entry) error {
	defer h.store.guard(ctx)()
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = h.store.now()
	}
	entry.Details = maps.Clone(entry.Details)
	h.store.data.history = append(h.store.data.history, entry)
	return nil
}

// List returns the newest entries first.
func (h *HistoryStore) List(ctx context.Context, ownerID, categoryID id.ID, limit int) ([]audit.Entry, error) {
	defer h.store.guard(ctx)()
	var out []audit.Entry
	hist := h.store.data.history
	for i := len(hist) - 1; i >= 0; i-- {
		e := hist[i]
		if e.OwnerID != ownerID || e.CategoryID != categoryID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Package audit keeps the per-category history log.
package audit

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/id"
)

// Action is a category history event.
type Action string

const (
	ActionCreated        Action = "created"
	ActionUpdated        Action = "updated"
	ActionDeleted        Action = "deleted"
	ActionProductAdded   Action = "product_added"
	ActionProductRemoved Action = "product_removed"
)

// Entry is one history row.
type Entry struct {
	ID         id.ID          `json:"id"`
	OwnerID    id.ID          `json:"-"`
	CategoryID id.ID          `json:"categoryId"`
	Action     Action         `json:"action"`
	Details    map[string]any `json:"details,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Store persists history. Record runs inside the caller's transaction.
type Store interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, ownerID, categoryID id.ID, limit int) ([]Entry, error)
}

// Diff calculates the difference between old and new states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

func equal(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

package reports

import (
	"context"
	"time"

	"shopledger/internal/core/id"
)

// Repository defines report data access interface.
type Repository interface {
	// SaleRows returns sales in [from, to) joined with product and customer names, oldest first.
	SaleRows(ctx context.Context, ownerID id.ID, from, to time.Time, status string) ([]SaleRow, error)
}

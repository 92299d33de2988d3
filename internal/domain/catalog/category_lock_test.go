package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app"
	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/infrastructure/storage/memory"
)

// lockingCategories records every category row locked through it.
type lockingCategories struct {
	catalog.CategoryRepository

	mu     sync.Mutex
	locked []id.ID
}

func (r *lockingCategories) GetForUpdate(ctx context.Context, ownerID, categoryID id.ID) (*catalog.Category, error) {
	r.mu.Lock()
	r.locked = append(r.locked, categoryID)
	r.mu.Unlock()
	return r.CategoryRepository.GetForUpdate(ctx, ownerID, categoryID)
}

func (r *lockingCategories) reset() {
	r.mu.Lock()
	r.locked = nil
	r.mu.Unlock()
}

func TestUpdateCategory_LocksEveryAncestor(t *testing.T) {
	backend := app.MemoryBackend(memory.NewStore())
	categories := &lockingCategories{CategoryRepository: backend.Categories}
	backend.Categories = categories
	svc := app.NewServices(backend, app.Options{
		Clock: calendar.NewManualClock(apptest.Epoch, time.UTC),
		JWT:   auth.DefaultJWTConfig("test-secret"),
	})
	ctx := appctx.WithOwner(context.Background(), id.New())

	food, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Food"})
	require.NoError(t, err)
	dairy, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Dairy", ParentID: &food.ID})
	require.NoError(t, err)
	cheese, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Cheese", ParentID: &dairy.ID})
	require.NoError(t, err)
	misc, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Misc"})
	require.NoError(t, err)

	categories.reset()
	_, err = svc.Catalog.UpdateCategory(ctx, misc.ID, catalog.CategoryInput{Name: "Misc", ParentID: &cheese.ID})
	require.NoError(t, err)
	assert.Subset(t, categories.locked, []id.ID{misc.ID, cheese.ID, dairy.ID, food.ID})

	// misc now sits under cheese, so the walk from misc reaches food again.
	categories.reset()
	_, err = svc.Catalog.UpdateCategory(ctx, food.ID, catalog.CategoryInput{Name: "Food", ParentID: &misc.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Subset(t, categories.locked, []id.ID{food.ID, misc.ID, cheese.ID, dairy.ID})
}

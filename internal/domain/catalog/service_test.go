package catalog_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/ledger"
)

func TestCreateProduct_GeneratesSKU(t *testing.T) {
	env := apptest.New(t)

	first, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name:          "coca cola zero",
		PurchasePrice: types.MustMoney("5"),
		SalePrice:     types.MustMoney("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CCZ0001", first.SKU)
	assert.Equal(t, catalog.UnitPiece, first.Unit)
	assert.Equal(t, catalog.StatusOutOfStock, first.Status)
	assert.True(t, first.MinQuantity.Equal(catalog.DefaultMinQuantity))

	// a hand-entered code in the way is skipped
	env.Product(t, "CC0003", 1, "1", "1")
	second, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name:          "Cream cheese",
		PurchasePrice: types.MustMoney("5"),
		SalePrice:     types.MustMoney("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CC0002", second.SKU)

	third, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name:          "Cheddar chunk",
		PurchasePrice: types.MustMoney("5"),
		SalePrice:     types.MustMoney("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CC0004", third.SKU)
}

func TestCreateProduct_Validation(t *testing.T) {
	env := apptest.New(t)
	env.Product(t, "DUP", 1, "1", "2")

	cases := map[string]catalog.ProductInput{
		"missing name":     {SKU: "X1", PurchasePrice: types.MustMoney("1"), SalePrice: types.MustMoney("2")},
		"price below cost": {Name: "X", PurchasePrice: types.MustMoney("3"), SalePrice: types.MustMoney("2")},
		"price precision":  {Name: "X", PurchasePrice: types.MustMoney("1"), SalePrice: types.MustMoney("2.001")},
		"unknown unit":     {Name: "X", Unit: "bucket", PurchasePrice: types.MustMoney("1"), SalePrice: types.MustMoney("2")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Catalog.CreateProduct(env.Ctx, in)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
		})
	}

	_, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name: "Other", SKU: "DUP", PurchasePrice: types.MustMoney("1"), SalePrice: types.MustMoney("2"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestAdjustStock(t *testing.T) {
	env := apptest.New(t)
	p := env.Product(t, "P1", 3, "1", "2")

	got, err := env.Catalog.AdjustStock(env.Ctx, p.ID, types.Qty(10))
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(types.Qty(13)))
	assert.Equal(t, catalog.StatusActive, got.Status)

	_, err = env.Catalog.AdjustStock(env.Ctx, p.ID, types.Qty(-14))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	got, err = env.Catalog.AdjustStock(env.Ctx, p.ID, types.Qty(-13))
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.Equal(t, catalog.StatusOutOfStock, got.Status)
}

func TestCategories_PathAndCycles(t *testing.T) {
	env := apptest.New(t)

	food, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Food"})
	require.NoError(t, err)
	assert.Equal(t, "food", food.Slug)
	assert.Equal(t, "ri-restaurant-line", food.Icon)

	dairy, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Dairy  Products", ParentID: &food.ID})
	require.NoError(t, err)
	assert.Equal(t, "dairy-products", dairy.Slug)

	cheese, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Cheese", ParentID: &dairy.ID})
	require.NoError(t, err)

	details, err := env.Catalog.GetCategory(env.Ctx, cheese.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food → Dairy  Products → Cheese", details.FullPath)
	assert.False(t, details.HasSubcategories)

	details, err = env.Catalog.GetCategory(env.Ctx, food.ID)
	require.NoError(t, err)
	assert.True(t, details.HasSubcategories)

	_, err = env.Catalog.UpdateCategory(env.Ctx, food.ID, catalog.CategoryInput{Name: "Food", ParentID: &cheese.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.Catalog.UpdateCategory(env.Ctx, food.ID, catalog.CategoryInput{Name: "Food", ParentID: &food.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Food"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestDeleteCategory_DetachesProductsAndKeepsHistory(t *testing.T) {
	env := apptest.New(t)

	parent, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	child, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Juice", ParentID: &parent.ID})
	require.NoError(t, err)

	q := types.Qty(4)
	p, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name: "Apple juice", SKU: "AJ1", CategoryID: &parent.ID,
		PurchasePrice: types.MustMoney("2.50"), SalePrice: types.MustMoney("4"), Quantity: &q,
	})
	require.NoError(t, err)

	rolled, err := env.Catalog.GetCategory(env.Ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rolled.ProductCount)
	assert.True(t, rolled.TotalValue.Equal(types.MustMoney("10")))

	require.NoError(t, env.Catalog.DeleteCategory(env.Ctx, parent.ID))

	got, err := env.Catalog.GetProduct(env.Ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	orphan, err := env.Catalog.GetCategory(env.Ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentID)
	assert.Equal(t, "Juice", orphan.FullPath)

	history, err := env.Catalog.CategoryHistory(env.Ctx, parent.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, audit.ActionDeleted, history[0].Action)
	assert.Equal(t, audit.ActionProductAdded, history[1].Action)
	assert.Equal(t, audit.ActionCreated, history[2].Action)
}

func TestCategoryRollup_FollowsLedger(t *testing.T) {
	env := apptest.New(t)
	cat, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Tools"})
	require.NoError(t, err)

	q := types.Qty(10)
	p, err := env.Catalog.CreateProduct(env.Ctx, catalog.ProductInput{
		Name: "Hammer", SKU: "H1", CategoryID: &cat.ID,
		PurchasePrice: types.MustMoney("3"), SalePrice: types.MustMoney("5"), Quantity: &q,
	})
	require.NoError(t, err)

	_, err = env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{ProductID: p.ID, Quantity: types.Qty(4)})
	require.NoError(t, err)

	got, err := env.Catalog.GetCategory(env.Ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalValue.Equal(types.MustMoney("18")))

	again, err := env.Catalog.RecomputeCategoryRollup(env.Ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, got.ProductCount, again.ProductCount)
	assert.True(t, got.TotalValue.Equal(again.TotalValue))
}

func TestUpdateCategory_RecordsDiff(t *testing.T) {
	env := apptest.New(t)
	c, err := env.Catalog.CreateCategory(env.Ctx, catalog.CategoryInput{Name: "Books"})
	require.NoError(t, err)

	updated, err := env.Catalog.UpdateCategory(env.Ctx, c.ID, catalog.CategoryInput{Name: "Old Books"})
	require.NoError(t, err)
	assert.Equal(t, "old-books", updated.Slug)

	history, err := env.Catalog.CategoryHistory(env.Ctx, c.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, audit.ActionUpdated, history[0].Action)
	assert.Contains(t, history[0].Details, "name")
}

type memMedia struct {
	saved map[string][]byte
}

func (m *memMedia) Save(_ context.Context, key string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved[key] = b
	return "/media/" + key, nil
}

func (m *memMedia) Delete(_ context.Context, key string) error {
	delete(m.saved, key)
	return nil
}

func TestAttachProductImage(t *testing.T) {
	env := apptest.New(t)
	p := env.Product(t, "IMG", 1, "1", "2")

	_, err := env.Catalog.AttachProductImage(env.Ctx, p.ID, "photo.png", bytes.NewReader([]byte("png")))
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "media store is not configured")

	media := &memMedia{saved: map[string][]byte{}}
	svc := catalog.NewService(catalog.ServiceConfig{
		Categories: env.Backend.Categories,
		Products:   env.Backend.Products,
		History:    env.Backend.History,
		Numerator:  env.Backend.Numerator,
		TxManager:  env.Backend.TxManager,
		Media:      media,
		Clock:      env.Clock,
	})
	got, err := svc.AttachProductImage(env.Ctx, p.ID, "../photo.png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, "/media/products/"+p.ID.String()+"/photo.png", *got.ImageURL)
	assert.Equal(t, []byte("png"), media.saved["products/"+p.ID.String()+"/photo.png"])
}

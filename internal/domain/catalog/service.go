package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/core/numerator"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/media"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// maxSKUAttempts bounds the search for a generated SKU that is not taken manually.
const maxSKUAttempts = 1000

// ServiceConfig holds the collaborators of Service.
type ServiceConfig struct {
	Categories CategoryRepository
	Products   ProductRepository
	History    audit.Store
	Numerator  numerator.Generator
	TxManager  tx.Manager
	Rollups    *rollup.Dispatcher
	Media      media.Store // optional
	Clock      calendar.Clock
}

// Service provides business operations for categories and products.
type Service struct {
	categories CategoryRepository
	products   ProductRepository
	history    audit.Store
	numerator  numerator.Generator
	txManager  tx.Manager
	rollups    *rollup.Dispatcher
	media      media.Store
	clock      calendar.Clock
}

// NewService creates the catalog service and registers its rollup handler.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = calendar.NewSystemClock(time.UTC)
	}
	s := &Service{
		categories: cfg.Categories,
		products:   cfg.Products,
		history:    cfg.History,
		numerator:  cfg.Numerator,
		txManager:  cfg.TxManager,
		rollups:    cfg.Rollups,
		media:      cfg.Media,
		clock:      cfg.Clock,
	}
	if s.rollups != nil {
		s.rollups.Register(rollup.KindCategoryRollup, s.handleRollup)
	}
	return s
}

// --- Categories ---

// CategoryInput carries writable category fields.
type CategoryInput struct {
	Name        string
	Description *string
	ParentID    *id.ID
	Icon        string
	Color       string
}

// CategoryDetails is a category with its derived read-side fields.
type CategoryDetails struct {
	*Category
	FullPath         string `json:"fullPath"`
	HasSubcategories bool   `json:"hasSubcategories"`
	HasProducts      bool   `json:"hasProducts"`
}

// CreateCategory validates and stores a new category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &Category{
		ID:          id.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		ParentID:    in.ParentID,
		Icon:        in.Icon,
		Color:       in.Color,
		TotalValue:  types.Zero(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Icon == "" || c.Color == "" {
		icon, color := DefaultStyle(c.Name)
		if c.Icon == "" {
			c.Icon = icon
		}
		if c.Color == "" {
			c.Color = color
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureCategoryNameFree(ctx, ownerID, c.Name, c.ID); err != nil {
			return err
		}
		if c.ParentID != nil {
			if _, err := s.parentCategory(ctx, ownerID, *c.ParentID); err != nil {
				return err
			}
		}
		slug, err := s.uniqueSlug(ctx, ownerID, c.Name, c.ID)
		if err != nil {
			return err
		}
		c.Slug = slug

		if err := s.categories.Create(ctx, c); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return s.record(ctx, ownerID, c.ID, audit.ActionCreated, map[string]any{"name": c.Name})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

// UpdateCategory rewrites category fields, rejecting parent cycles.
func (s *Service) UpdateCategory(ctx context.Context, categoryID id.ID, in CategoryInput) (*Category, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var c *Category
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.categories.GetForUpdate(ctx, ownerID, categoryID)
		if err != nil {
			return err
		}
		before := categoryState(current)

		next := *current
		next.Name = strings.TrimSpace(in.Name)
		next.Description = in.Description
		next.ParentID = in.ParentID
		if in.Icon != "" {
			next.Icon = in.Icon
		}
		if in.Color != "" {
			next.Color = in.Color
		}
		next.UpdatedAt = s.clock.Now()
		if err := next.Validate(); err != nil {
			return err
		}

		if next.Name != current.Name {
			if err := s.ensureCategoryNameFree(ctx, ownerID, next.Name, next.ID); err != nil {
				return err
			}
			slug, err := s.uniqueSlug(ctx, ownerID, next.Name, next.ID)
			if err != nil {
				return err
			}
			next.Slug = slug
		}
		if next.ParentID != nil && !id.Equal(next.ParentID, current.ParentID) {
			if err := s.ensureNoCycle(ctx, ownerID, next.ID, *next.ParentID); err != nil {
				return err
			}
		}

		if err := s.categories.Update(ctx, &next); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		c = &next

		changes := audit.Diff(before, categoryState(&next))
		if len(changes) == 0 {
			return nil
		}
		return s.record(ctx, ownerID, next.ID, audit.ActionUpdated, changes)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category. Member products and child categories are detached.
func (s *Service) DeleteCategory(ctx context.Context, categoryID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.categories.GetForUpdate(ctx, ownerID, categoryID)
		if err != nil {
			return err
		}
		if err := s.record(ctx, ownerID, c.ID, audit.ActionDeleted, map[string]any{"name": c.Name}); err != nil {
			return err
		}
		return s.categories.Delete(ctx, ownerID, categoryID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "category deleted", "category_id", categoryID)
	return nil
}

// GetCategory returns a category with its derived fields.
func (s *Service) GetCategory(ctx context.Context, categoryID id.ID) (*CategoryDetails, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	path, err := s.categories.GetPath(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, apperror.NewNotFound("category", categoryID)
	}
	hasChildren, err := s.categories.HasChildren(ctx, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("check children: %w", err)
	}
	count, _, err := s.products.CategoryTotals(ctx, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return &CategoryDetails{
		Category:         path[len(path)-1],
		FullPath:         FullPath(path),
		HasSubcategories: hasChildren,
		HasProducts:      count > 0,
	}, nil
}

// ListCategories returns a page of categories.
func (s *Service) ListCategories(ctx context.Context, f CategoryFilter) (filter.ListResult[*Category], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Category]{}, err
	}
	f.Page = f.Page.Normalize("name")
	return s.categories.List(ctx, ownerID, f)
}

// CategoryPath returns the root-to-leaf chain of a category.
func (s *Service) CategoryPath(ctx context.Context, categoryID id.ID) ([]*Category, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	path, err := s.categories.GetPath(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, apperror.NewNotFound("category", categoryID)
	}
	return path, nil
}

// CategoryHistory returns the newest history entries first.
func (s *Service) CategoryHistory(ctx context.Context, categoryID id.ID, limit int) ([]audit.Entry, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > filter.MaxLimit {
		limit = filter.DefaultLimit
	}
	return s.history.List(ctx, ownerID, categoryID, limit)
}

// RecomputeCategoryRollup recomputes product_count and total_value from member products.
// It is a pure recompute under a row lock and may be repeated freely.
func (s *Service) RecomputeCategoryRollup(ctx context.Context, categoryID id.ID) (*Category, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var c *Category
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.categories.GetForUpdate(ctx, ownerID, categoryID)
		if err != nil {
			return err
		}
		count, value, err := s.products.CategoryTotals(ctx, ownerID, categoryID)
		if err != nil {
			return fmt.Errorf("category totals: %w", err)
		}
		locked.ProductCount = count
		locked.TotalValue = value
		if err := s.categories.UpdateRollup(ctx, locked); err != nil {
			return fmt.Errorf("update rollup: %w", err)
		}
		c = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) handleRollup(ctx context.Context, job rollup.Job) error {
	ctx = appctx.WithOwner(ctx, job.OwnerID)
	_, err := s.RecomputeCategoryRollup(ctx, job.TargetID)
	if apperror.IsNotFound(err) {
		// category deleted in the meantime
		return nil
	}
	return err
}

func (s *Service) ensureCategoryNameFree(ctx context.Context, ownerID id.ID, name string, self id.ID) error {
	existing, err := s.categories.FindByName(ctx, ownerID, name)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find category by name: %w", err)
	}
	if existing.ID != self {
		return apperror.NewDuplicate("category", "name", name)
	}
	return nil
}

func (s *Service) parentCategory(ctx context.Context, ownerID, parentID id.ID) (*Category, error) {
	parent, err := s.categories.GetByID(ctx, ownerID, parentID)
	if apperror.IsNotFound(err) {
		return nil, apperror.NewValidation("parent category not found").WithField("parentId", parentID.String())
	}
	return parent, err
}

// ensureNoCycle walks up from the new parent; meeting self means a cycle.
// Every ancestor is row-locked so two crossing re-parents cannot both pass;
// one of them fails with a deadlock, reported as CONFLICT.
func (s *Service) ensureNoCycle(ctx context.Context, ownerID, self, parentID id.ID) error {
	seen := make(map[id.ID]bool)
	cursor := &parentID
	for cursor != nil {
		if *cursor == self {
			return apperror.NewValidation("category parent would create a cycle").
				WithField("parentId", parentID.String())
		}
		if seen[*cursor] {
			break
		}
		seen[*cursor] = true

		parent, err := s.categories.GetForUpdate(ctx, ownerID, *cursor)
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("parent category not found").WithField("parentId", cursor.String())
		}
		if err != nil {
			return err
		}
		cursor = parent.ParentID
	}
	return nil
}

func (s *Service) uniqueSlug(ctx context.Context, ownerID id.ID, name string, self id.ID) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "category"
	}
	slug := base
	for i := 2; ; i++ {
		taken, err := s.categories.SlugExists(ctx, ownerID, slug, self)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *Service) record(ctx context.Context, ownerID, categoryID id.ID, action audit.Action, details map[string]any) error {
	if s.history == nil {
		return nil
	}
	actor := ""
	if u := appctx.GetUser(ctx); u != nil {
		actor = u.Username
	}
	err := s.history.Record(ctx, audit.Entry{
		ID:         id.New(),
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Action:     action,
		Details:    details,
		Actor:      actor,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("record category history: %w", err)
	}
	return nil
}

func categoryState(c *Category) map[string]any {
	state := map[string]any{
		"name":  c.Name,
		"icon":  c.Icon,
		"color": c.Color,
	}
	if c.Description != nil {
		state["description"] = *c.Description
	}
	if c.ParentID != nil {
		state["parentId"] = c.ParentID.String()
	}
	return state
}

// --- Products ---

// ProductInput carries writable product fields. Nil quantities take defaults on create.
type ProductInput struct {
	Name          string
	SKU           string
	Barcode       *string
	CategoryID    *id.ID
	Brand         *string
	Unit          Unit
	PurchasePrice types.Money
	SalePrice     types.Money
	Quantity      *types.Quantity
	MinQuantity   *types.Quantity
	Description   *string
}

// CreateProduct validates, assigns a SKU when omitted and stores a product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &Product{
		ID:            id.New(),
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(in.Name),
		SKU:           strings.TrimSpace(in.SKU),
		Barcode:       in.Barcode,
		CategoryID:    in.CategoryID,
		Brand:         in.Brand,
		Unit:          in.Unit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Quantity:      types.Zero(),
		MinQuantity:   DefaultMinQuantity,
		Description:   in.Description,
		TotalSold:     types.Zero(),
		TotalRevenue:  types.Zero(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.Unit == "" {
		p.Unit = UnitPiece
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.MinQuantity != nil {
		p.MinQuantity = *in.MinQuantity
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.RefreshStatus()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if p.CategoryID != nil {
			if err := s.ensureCategory(ctx, ownerID, *p.CategoryID); err != nil {
				return err
			}
		}
		if p.SKU == "" {
			sku, err := s.generateSKU(ctx, ownerID, p.Name)
			if err != nil {
				return err
			}
			p.SKU = sku
		} else if err := s.ensureSKUFree(ctx, ownerID, p.SKU, p.ID); err != nil {
			return err
		}

		if err := s.products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if p.CategoryID != nil {
			return s.record(ctx, ownerID, *p.CategoryID, audit.ActionProductAdded, productRef(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "sku", p.SKU, "status", p.Status)
	s.dispatchCategories(ctx, ownerID, p.CategoryID)
	return p, nil
}

// UpdateProduct rewrites product fields and re-derives its status.
func (s *Service) UpdateProduct(ctx context.Context, productID id.ID, in ProductInput) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var (
		p           *Product
		oldCategory *id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.products.GetForUpdate(ctx, ownerID, productID)
		if err != nil {
			return err
		}
		oldCategory = current.CategoryID

		next := *current
		next.Name = strings.TrimSpace(in.Name)
		next.Barcode = in.Barcode
		next.CategoryID = in.CategoryID
		next.Brand = in.Brand
		if in.Unit != "" {
			next.Unit = in.Unit
		}
		next.PurchasePrice = in.PurchasePrice
		next.SalePrice = in.SalePrice
		if in.Quantity != nil {
			next.Quantity = *in.Quantity
		}
		if in.MinQuantity != nil {
			next.MinQuantity = *in.MinQuantity
		}
		next.Description = in.Description
		next.UpdatedAt = s.clock.Now()
		if err := next.Validate(); err != nil {
			return err
		}
		next.RefreshStatus()

		if sku := strings.TrimSpace(in.SKU); sku != "" && sku != current.SKU {
			if err := s.ensureSKUFree(ctx, ownerID, sku, next.ID); err != nil {
				return err
			}
			next.SKU = sku
		}

		categoryChanged := !id.Equal(current.CategoryID, next.CategoryID)
		if categoryChanged && next.CategoryID != nil {
			if err := s.ensureCategory(ctx, ownerID, *next.CategoryID); err != nil {
				return err
			}
		}

		if err := s.products.Update(ctx, &next); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		p = &next

		if !categoryChanged {
			return nil
		}
		if current.CategoryID != nil {
			if err := s.record(ctx, ownerID, *current.CategoryID, audit.ActionProductRemoved, productRef(p)); err != nil {
				return err
			}
		}
		if next.CategoryID != nil {
			return s.record(ctx, ownerID, *next.CategoryID, audit.ActionProductAdded, productRef(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchCategories(ctx, ownerID, oldCategory, p.CategoryID)
	return p, nil
}

// DeleteProduct removes a product with its sales, purchases and their debts.
// Stock is not reversed.
func (s *Service) DeleteProduct(ctx context.Context, productID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}

	var (
		category  *id.ID
		customers []id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, ownerID, productID)
		if err != nil {
			return err
		}
		category = p.CategoryID

		customers, err = s.products.CustomersWithSales(ctx, ownerID, productID)
		if err != nil {
			return fmt.Errorf("list product customers: %w", err)
		}
		if err := s.products.Delete(ctx, ownerID, productID); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if category != nil {
			return s.record(ctx, ownerID, *category, audit.ActionProductRemoved, productRef(p))
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product deleted", "product_id", productID)
	jobs := make([]rollup.Job, 0, len(customers)+1)
	for _, c := range customers {
		jobs = append(jobs, rollup.CustomerStats(ownerID, c))
	}
	if category != nil {
		jobs = append(jobs, rollup.CategoryRollup(ownerID, *category))
	}
	s.dispatch(ctx, jobs...)
	return nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.products.GetByID(ctx, ownerID, productID)
}

// ListProducts returns a page of products.
func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (filter.ListResult[*Product], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Product]{}, err
	}
	f.Page = f.Page.Normalize("name")
	return s.products.List(ctx, ownerID, f)
}

// AdjustStock applies a manual stock correction in its own transaction.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var p *Product
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.ApplyStockDelta(ctx, productID, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted", "product_id", productID, "delta", delta, "quantity", p.Quantity)
	s.dispatchCategories(ctx, ownerID, p.CategoryID)
	return p, nil
}

// LockProduct reads a product with a row lock. Must run inside a transaction.
func (s *Service) LockProduct(ctx context.Context, productID id.ID) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.products.GetForUpdate(ctx, ownerID, productID)
}

// ApplyStockDelta is the single read-modify-write of a product's stock.
// It must run inside the caller's transaction and does not trigger rollups.
func (s *Service) ApplyStockDelta(ctx context.Context, productID id.ID, delta types.Quantity) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if !types.FitsScale(delta, types.QuantityScale) {
		return nil, apperror.NewValidation("quantity allows at most 3 decimal places").
			WithField("delta", delta.String())
	}

	p, err := s.products.GetForUpdate(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}
	next := p.Quantity.Add(delta)
	if next.IsNegative() {
		return nil, apperror.NewInsufficientStock(productID.String(), delta.String(), p.Quantity.String())
	}
	p.Quantity = next
	p.RefreshStatus()
	p.UpdatedAt = s.clock.Now()

	if err := s.products.UpdateStock(ctx, p); err != nil {
		return nil, fmt.Errorf("update stock: %w", err)
	}
	return p, nil
}

// AddSaleTotals moves the product's cumulative sold quantity and revenue.
func (s *Service) AddSaleTotals(ctx context.Context, productID id.ID, qty types.Quantity, revenue types.Money) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}
	if err := s.products.AddSaleTotals(ctx, ownerID, productID, qty, revenue); err != nil {
		return fmt.Errorf("add sale totals: %w", err)
	}
	return nil
}

// AttachProductImage stores the blob through the media collaborator and saves its URL.
func (s *Service) AttachProductImage(ctx context.Context, productID id.ID, filename string, r io.Reader) (*Product, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "media storage is not configured")
	}
	if _, err := s.products.GetByID(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	key, err := media.ProductImageKey(productID, filename)
	if err != nil {
		return nil, err
	}
	url, err := s.media.Save(ctx, key, r)
	if err != nil {
		return nil, fmt.Errorf("save product image: %w", err)
	}

	var p *Product
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.products.GetForUpdate(ctx, ownerID, productID)
		if err != nil {
			return err
		}
		locked.ImageURL = &url
		locked.UpdatedAt = s.clock.Now()
		if err := s.products.Update(ctx, locked); err != nil {
			return fmt.Errorf("update product image: %w", err)
		}
		p = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ensureCategory(ctx context.Context, ownerID, categoryID id.ID) error {
	_, err := s.categories.GetByID(ctx, ownerID, categoryID)
	if apperror.IsNotFound(err) {
		return apperror.NewValidation("category not found").WithField("categoryId", categoryID.String())
	}
	return err
}

func (s *Service) ensureSKUFree(ctx context.Context, ownerID id.ID, sku string, self id.ID) error {
	taken, err := s.products.SKUExists(ctx, ownerID, sku, self)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return apperror.NewDuplicate("product", "sku", sku)
	}
	return nil
}

// generateSKU draws from the owner's SKU sequence, skipping codes already entered by hand.
func (s *Service) generateSKU(ctx context.Context, ownerID id.ID, name string) (string, error) {
	prefix := SKUPrefix(name)
	cfg := numerator.SKUConfig(ownerID.String())
	for i := 0; i < maxSKUAttempts; i++ {
		seq, err := s.numerator.NextValue(ctx, cfg, s.clock.Now())
		if err != nil {
			return "", fmt.Errorf("generate sku: %w", err)
		}
		sku := FormatSKU(prefix, seq)
		taken, err := s.products.SKUExists(ctx, ownerID, sku, id.Nil())
		if err != nil {
			return "", fmt.Errorf("check sku: %w", err)
		}
		if !taken {
			return sku, nil
		}
	}
	return "", apperror.NewConflict("could not allocate a free SKU").WithDetail("prefix", prefix)
}

func (s *Service) dispatchCategories(ctx context.Context, ownerID id.ID, categories ...*id.ID) {
	jobs := make([]rollup.Job, 0, len(categories))
	for _, c := range categories {
		if c != nil {
			jobs = append(jobs, rollup.CategoryRollup(ownerID, *c))
		}
	}
	s.dispatch(ctx, jobs...)
}

func (s *Service) dispatch(ctx context.Context, jobs ...rollup.Job) {
	if s.rollups == nil || len(jobs) == 0 {
		return
	}
	s.rollups.Dispatch(ctx, jobs...)
}

func productRef(p *Product) map[string]any {
	return map[string]any{"productId": p.ID.String(), "name": p.Name, "sku": p.SKU}
}

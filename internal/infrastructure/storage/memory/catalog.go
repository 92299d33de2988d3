package memory

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/filter"
)

// CategoryRepo implements catalog.CategoryRepository.
type CategoryRepo struct {
	store *Store
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(store *Store) *CategoryRepo {
	return &CategoryRepo{store: store}
}

var categoryOrder = map[string]func(a, b *catalog.Category) int{
	"name":          func(a, b *catalog.Category) int { return cmpString(a.Name, b.Name) },
	"slug":          func(a, b *catalog.Category) int { return cmpString(a.Slug, b.Slug) },
	"product_count": func(a, b *catalog.Category) int { return a.ProductCount - b.ProductCount },
	"total_value":   func(a, b *catalog.Category) int { return a.TotalValue.Cmp(b.TotalValue) },
	"created_at":    func(a, b *catalog.Category) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"updated_at":    func(a, b *catalog.Category) int { return cmpTime(a.UpdatedAt, b.UpdatedAt) },
}

func (r *CategoryRepo) Create(ctx context.Context, c *catalog.Category) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	for _, other := range t.categories {
		if other.OwnerID != c.OwnerID {
			continue
		}
		if other.Name == c.Name {
			return apperror.NewDuplicate("category", "name", c.Name)
		}
		if other.Slug == c.Slug {
			return apperror.NewDuplicate("category", "slug", c.Slug)
		}
	}
	t.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *catalog.Category) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.categories[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return apperror.NewNotFound("category", c.ID)
	}
	for _, other := range t.categories {
		if other.OwnerID != c.OwnerID || other.ID == c.ID {
			continue
		}
		if other.Name == c.Name {
			return apperror.NewDuplicate("category", "name", c.Name)
		}
		if other.Slug == c.Slug {
			return apperror.NewDuplicate("category", "slug", c.Slug)
		}
	}
	t.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) UpdateRollup(ctx context.Context, c *catalog.Category) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.categories[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return apperror.NewNotFound("category", c.ID)
	}
	cur.ProductCount = c.ProductCount
	cur.TotalValue = c.TotalValue
	cur.UpdatedAt = c.UpdatedAt
	t.categories[c.ID] = cur
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, ownerID, categoryID id.ID) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.categories[categoryID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("category", categoryID)
	}
	for pid, p := range t.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			t.products[pid] = p
		}
	}
	for cid, child := range t.categories {
		if child.ParentID != nil && *child.ParentID == categoryID {
			child.ParentID = nil
			t.categories[cid] = child
		}
	}
	delete(t.categories, categoryID)
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, ownerID, categoryID id.ID) (*catalog.Category, error) {
	defer r.store.guard(ctx)()
	c, ok := r.store.data.categories[categoryID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperror.NewNotFound("category", categoryID)
	}
	return &c, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *CategoryRepo) GetForUpdate(ctx context.Context, ownerID, categoryID id.ID) (*catalog.Category, error) {
	return r.GetByID(ctx, ownerID, categoryID)
}

func (r *CategoryRepo) FindByName(ctx context.Context, ownerID id.ID, name string) (*catalog.Category, error) {
	defer r.store.guard(ctx)()
	for _, c := range r.store.data.categories {
		if c.OwnerID == ownerID && c.Name == name {
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("category", name)
}

func (r *CategoryRepo) SlugExists(ctx context.Context, ownerID id.ID, slug string, excludeID id.ID) (bool, error) {
	defer r.store.guard(ctx)()
	for _, c := range r.store.data.categories {
		if c.OwnerID == ownerID && c.Slug == slug && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepo) HasChildren(ctx context.Context, ownerID, categoryID id.ID) (bool, error) {
	defer r.store.guard(ctx)()
	for _, c := range r.store.data.categories {
		if c.OwnerID == ownerID && c.ParentID != nil && *c.ParentID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (r *CategoryRepo) List(ctx context.Context, ownerID id.ID, f catalog.CategoryFilter) (filter.ListResult[*catalog.Category], error) {
	defer r.store.guard(ctx)()
	var rows []*catalog.Category
	for _, c := range r.store.data.categories {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(optString(c.Description), f.Search) {
			continue
		}
		if f.RootOnly && c.ParentID != nil {
			continue
		}
		if f.ParentID != nil && !id.Equal(c.ParentID, f.ParentID) {
			continue
		}
		rows = append(rows, &c)
	}
	sortRows(rows, f.OrderBy, categoryOrder, func(c *catalog.Category) id.ID { return c.ID })
	return page(rows, f.Page), nil
}

func (r *CategoryRepo) GetPath(ctx context.Context, ownerID, categoryID id.ID) ([]*catalog.Category, error) {
	defer r.store.guard(ctx)()
	t := r.store.data
	var path []*catalog.Category
	seen := make(map[id.ID]bool)
	cur := &categoryID
	for cur != nil && !seen[*cur] {
		c, ok := t.categories[*cur]
		if !ok || c.OwnerID != ownerID {
			if len(path) == 0 {
				return nil, apperror.NewNotFound("category", categoryID)
			}
			break
		}
		seen[c.ID] = true
		path = append([]*catalog.Category{&c}, path...)
		cur = c.ParentID
	}
	return path, nil
}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	store *Store
}

// NewProductRepo creates a product repository.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

var productOrder = map[string]func(a, b *catalog.Product) int{
	"name":          func(a, b *catalog.Product) int { return cmpString(a.Name, b.Name) },
	"sku":           func(a, b *catalog.Product) int { return cmpString(a.SKU, b.SKU) },
	"quantity":      func(a, b *catalog.Product) int { return a.Quantity.Cmp(b.Quantity) },
	"sale_price":    func(a, b *catalog.Product) int { return a.SalePrice.Cmp(b.SalePrice) },
	"total_sold":    func(a, b *catalog.Product) int { return a.TotalSold.Cmp(b.TotalSold) },
	"total_revenue": func(a, b *catalog.Product) int { return a.TotalRevenue.Cmp(b.TotalRevenue) },
	"created_at":    func(a, b *catalog.Product) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"updated_at":    func(a, b *catalog.Product) int { return cmpTime(a.UpdatedAt, b.UpdatedAt) },
}

func (r *ProductRepo) checkUnique(t *tables, p *catalog.Product) error {
	for _, other := range t.products {
		if other.OwnerID != p.OwnerID || other.ID == p.ID {
			continue
		}
		if other.SKU == p.SKU {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
		if p.Barcode != nil && other.Barcode != nil && *p.Barcode == *other.Barcode {
			return apperror.NewDuplicate("product", "barcode", *p.Barcode)
		}
	}
	return nil
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	if err := r.checkUnique(t, p); err != nil {
		return err
	}
	t.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.products[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return apperror.NewNotFound("product", p.ID)
	}
	if err := r.checkUnique(t, p); err != nil {
		return err
	}
	// sale counters are owned by AddSaleTotals
	p.TotalSold = cur.TotalSold
	p.TotalRevenue = cur.TotalRevenue
	t.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, p *catalog.Product) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.products[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return apperror.NewNotFound("product", p.ID)
	}
	cur.Quantity = p.Quantity
	cur.Status = p.Status
	cur.UpdatedAt = p.UpdatedAt
	t.products[p.ID] = cur
	return nil
}

func (r *ProductRepo) AddSaleTotals(ctx context.Context, ownerID, productID id.ID, qty types.Quantity, revenue types.Money) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.products[productID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("product", productID)
	}
	cur.TotalSold = cur.TotalSold.Add(qty)
	cur.TotalRevenue = cur.TotalRevenue.Add(revenue)
	t.products[productID] = cur
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, ownerID, productID id.ID) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.products[productID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("product", productID)
	}
	for sid, s := range t.sales {
		if s.ProductID == productID {
			t.deleteSale(sid)
		}
	}
	for pid, p := range t.purchases {
		if p.ProductID == productID {
			delete(t.purchases, pid)
		}
	}
	delete(t.products, productID)
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, ownerID, productID id.ID) (*catalog.Product, error) {
	defer r.store.guard(ctx)()
	p, ok := r.store.data.products[productID]
	if !ok || p.OwnerID != ownerID {
		return nil, apperror.NewNotFound("product", productID)
	}
	return &p, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *ProductRepo) GetForUpdate(ctx context.Context, ownerID, productID id.ID) (*catalog.Product, error) {
	return r.GetByID(ctx, ownerID, productID)
}

func (r *ProductRepo) SKUExists(ctx context.Context, ownerID id.ID, sku string, excludeID id.ID) (bool, error) {
	defer r.store.guard(ctx)()
	for _, p := range r.store.data.products {
		if p.OwnerID == ownerID && p.SKU == sku && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductRepo) List(ctx context.Context, ownerID id.ID, f catalog.ProductFilter) (filter.ListResult[*catalog.Product], error) {
	defer r.store.guard(ctx)()
	var rows []*catalog.Product
	for _, p := range r.store.data.products {
		if p.OwnerID != ownerID {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.SKU, f.Search) &&
			!containsFold(optString(p.Barcode), f.Search) {
			continue
		}
		if f.CategoryID != nil && !id.Equal(p.CategoryID, f.CategoryID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.LowStock != nil && p.IsLowStock() != *f.LowStock {
			continue
		}
		rows = append(rows, &p)
	}
	sortRows(rows, f.OrderBy, productOrder, func(p *catalog.Product) id.ID { return p.ID })
	return page(rows, f.Page), nil
}

func (r *ProductRepo) CategoryTotals(ctx context.Context, ownerID, categoryID id.ID) (int, types.Money, error) {
	defer r.store.guard(ctx)()
	count := 0
	value := types.Zero()
	for _, p := range r.store.data.products {
		if p.OwnerID != ownerID || p.CategoryID == nil || *p.CategoryID != categoryID {
			continue
		}
		count++
		value = value.Add(p.TotalValue())
	}
	return count, value, nil
}

func (r *ProductRepo) CustomersWithSales(ctx context.Context, ownerID, productID id.ID) ([]id.ID, error) {
	defer r.store.guard(ctx)()
	seen := make(map[id.ID]bool)
	var out []id.ID
	for _, s := range r.store.data.sales {
		if s.OwnerID != ownerID || s.ProductID != productID || s.CustomerID == nil {
			continue
		}
		if !seen[*s.CustomerID] {
			seen[*s.CustomerID] = true
			out = append(out, *s.CustomerID)
		}
	}
	return out, nil
}

// Package catalog_repo provides PostgreSQL implementations of the category,
// product and customer repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/filter"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	categoryNameKey = "categories_owner_name_key"
	categorySlugKey = "categories_owner_slug_key"
)

// maxCategoryDepth bounds the parent walk in GetPath.
const maxCategoryDepth = 64

// CategoryRepo implements catalog.CategoryRepository.
type CategoryRepo struct {
	postgres.BaseRepo[catalog.Category]
}

var _ catalog.CategoryRepository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseRepo: postgres.NewBaseRepo[catalog.Category](txManager, "categories", "category",
			"name", "slug", "product_count", "total_value", "created_at", "updated_at"),
	}
}

// categoryEditable are the columns Update writes; rollups have their own path.
var categoryEditable = []string{"name", "slug", "description", "parent_id", "icon", "color", "updated_at"}

func categoryUniques(c *catalog.Category) []postgres.Unique {
	return []postgres.Unique{
		{Constraint: categoryNameKey, Field: "name", Value: c.Name},
		{Constraint: categorySlugKey, Field: "slug", Value: c.Slug},
	}
}

func (r *CategoryRepo) Create(ctx context.Context, c *catalog.Category) error {
	return r.Insert(ctx, c, categoryUniques(c)...)
}

func (r *CategoryRepo) Update(ctx context.Context, c *catalog.Category) error {
	return r.UpdateColumns(ctx, c.ID, c.OwnerID, c, categoryEditable, categoryUniques(c)...)
}

func (r *CategoryRepo) UpdateRollup(ctx context.Context, c *catalog.Category) error {
	return r.UpdateColumns(ctx, c.ID, c.OwnerID, c, []string{"product_count", "total_value", "updated_at"})
}

// Delete removes the category. The parent_id and category_id foreign keys are
// ON DELETE SET NULL, so children and member products are detached by the database.
func (r *CategoryRepo) Delete(ctx context.Context, ownerID, categoryID id.ID) error {
	q := r.Builder().
		Delete(r.Table).
		Where(squirrel.Eq{"id": categoryID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, categoryID)
}

func (r *CategoryRepo) GetByID(ctx context.Context, ownerID, categoryID id.ID) (*catalog.Category, error) {
	return r.FindByID(ctx, ownerID, categoryID)
}

func (r *CategoryRepo) GetForUpdate(ctx context.Context, ownerID, categoryID id.ID) (*catalog.Category, error) {
	return r.FindForUpdate(ctx, ownerID, categoryID)
}

func (r *CategoryRepo) FindByName(ctx context.Context, ownerID id.ID, name string) (*catalog.Category, error) {
	return r.GetOne(ctx, r.Select(ownerID).Where(squirrel.Eq{"name": name}), name)
}

func (r *CategoryRepo) SlugExists(ctx context.Context, ownerID id.ID, slug string, excludeID id.ID) (bool, error) {
	q := r.Select(ownerID).
		Where(squirrel.Eq{"slug": slug}).
		Where(squirrel.NotEq{"id": excludeID})
	return r.Exists(ctx, q)
}

func (r *CategoryRepo) HasChildren(ctx context.Context, ownerID, categoryID id.ID) (bool, error) {
	return r.Exists(ctx, r.Select(ownerID).Where(squirrel.Eq{"parent_id": categoryID}))
}

func (r *CategoryRepo) List(ctx context.Context, ownerID id.ID, f catalog.CategoryFilter) (filter.ListResult[*catalog.Category], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *CategoryRepo) applyFilter(q squirrel.SelectBuilder, f catalog.CategoryFilter) squirrel.SelectBuilder {
	if f.Search != "" {
		pattern := postgres.LikePattern(f.Search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if f.RootOnly {
		q = q.Where(squirrel.Eq{"parent_id": nil})
	}
	if f.ParentID != nil {
		q = q.Where(squirrel.Eq{"parent_id": *f.ParentID})
	}
	return q
}

// GetPath walks parent links with a recursive CTE. The depth bound and the
// visited-id array stop the walk on a cyclic chain.
func (r *CategoryRepo) GetPath(ctx context.Context, ownerID, categoryID id.ID) ([]*catalog.Category, error) {
	sql := fmt.Sprintf(`
		WITH RECURSIVE path AS (
			SELECT %[1]s, 0 AS level, ARRAY[c.id] AS visited
			FROM categories c
			WHERE c.id = $1 AND c.owner_id = $2

			UNION ALL

			SELECT %[1]s, p.level + 1, p.visited || c.id
			FROM categories c
			INNER JOIN path p ON c.id = p.parent_id
			WHERE c.owner_id = $2 AND NOT c.id = ANY(p.visited) AND p.level < %[2]d
		)
		SELECT %[3]s FROM path
		ORDER BY level DESC
	`, postgres.Qualified("c", r.Columns), maxCategoryDepth, strings.Join(r.Columns, ", "))

	var items []*catalog.Category
	if err := pgxscan.Select(ctx, r.Txm.GetQuerier(ctx), &items, sql, categoryID, ownerID); err != nil {
		return nil, fmt.Errorf("get category path: %w", err)
	}
	if len(items) == 0 {
		return nil, apperror.NewNotFound(r.Entity, categoryID)
	}
	return items, nil
}

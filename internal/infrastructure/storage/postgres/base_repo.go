package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
)

// BaseRepo holds the SQL plumbing shared by the owner-scoped tables.
// Every query filters on owner_id; rows of other owners are invisible.
type BaseRepo[T any] struct {
	Txm     *TxManager
	Table   string
	Entity  string
	Columns []string

	orderable map[string]bool
}

// NewBaseRepo reads the columns from T's db tags. orderable whitelists the
// fields a caller may sort on.
func NewBaseRepo[T any](txManager *TxManager, tableName, entity string, orderable ...string) BaseRepo[T] {
	allowed := make(map[string]bool, len(orderable))
	for _, col := range orderable {
		allowed[col] = true
	}
	return BaseRepo[T]{
		Txm:       txManager,
		Table:     tableName,
		Entity:    entity,
		Columns:   ExtractDBColumns[T](),
		orderable: allowed,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseRepo[T]) Select(ownerID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.Columns...).
		From(r.Table).
		Where(squirrel.Eq{"owner_id": ownerID})
}

func (r *BaseRepo[T]) Insert(ctx context.Context, entity *T, uniques ...Unique) error {
	q := r.Builder().
		Insert(r.Table).
		SetMap(SetMapFor(entity, r.Columns))
	return r.Exec(ctx, q, uniques...)
}

// UpdateColumns writes cols of entity to its row, matching on id and owner_id.
func (r *BaseRepo[T]) UpdateColumns(ctx context.Context, entityID, ownerID id.ID, entity *T, cols []string, uniques ...Unique) error {
	q := r.Builder().
		Update(r.Table).
		SetMap(SetMapFor(entity, cols)).
		Where(squirrel.Eq{"id": entityID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, entityID, uniques...)
}

func (r *BaseRepo[T]) Exec(ctx context.Context, q squirrel.Sqlizer, uniques ...Unique) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s statement: %w", r.Table, err)
	}
	if _, err := r.Txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError(fmt.Errorf("exec %s: %w", r.Table, err), r.Entity, uniques...)
	}
	return nil
}

// ExecOne is Exec that reports NOT_FOUND when no row was touched.
func (r *BaseRepo[T]) ExecOne(ctx context.Context, q squirrel.Sqlizer, entityID id.ID, uniques ...Unique) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s statement: %w", r.Table, err)
	}
	tag, err := r.Txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return MapError(fmt.Errorf("exec %s: %w", r.Table, err), r.Entity, uniques...)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(pgx.ErrNoRows, r.Entity, entityID)
	}
	return nil
}

func (r *BaseRepo[T]) GetOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	entity := new(T)
	if err := pgxscan.Get(ctx, r.Txm.GetQuerier(ctx), entity, sql, args...); err != nil {
		return nil, NotFound(err, r.Entity, key)
	}
	return entity, nil
}

func (r *BaseRepo[T]) FindByID(ctx context.Context, ownerID, entityID id.ID) (*T, error) {
	return r.GetOne(ctx, r.Select(ownerID).Where(squirrel.Eq{"id": entityID}), entityID)
}

func (r *BaseRepo[T]) FindForUpdate(ctx context.Context, ownerID, entityID id.ID) (*T, error) {
	q := r.Select(ownerID).
		Where(squirrel.Eq{"id": entityID}).
		Suffix("FOR UPDATE")
	return r.GetOne(ctx, q, entityID)
}

func (r *BaseRepo[T]) SelectAll(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []*T
	if err := pgxscan.Select(ctx, r.Txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.Table, err)
	}
	return items, nil
}

// Exists reports whether q yields at least one row.
func (r *BaseRepo[T]) Exists(ctx context.Context, q squirrel.SelectBuilder) (bool, error) {
	inner, args, err := q.Limit(1).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}
	var found bool
	if err := r.Txm.GetQuerier(ctx).QueryRow(ctx, "SELECT EXISTS ("+inner+")", args...).Scan(&found); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.Table, err)
	}
	return found, nil
}

// Paginate counts q, then returns one ordered page of it.
func (r *BaseRepo[T]) Paginate(ctx context.Context, q squirrel.SelectBuilder, page filter.Page) (filter.ListResult[*T], error) {
	result := filter.ListResult[*T]{Limit: page.Limit, Offset: page.Offset}

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	querier := r.Txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.Table, err)
	}

	q = q.OrderBy(r.OrderBy(page.OrderBy)...)
	if page.Limit > 0 {
		q = q.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		q = q.Offset(uint64(page.Offset))
	}

	items, err := r.SelectAll(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// OrderBy keeps whitelisted fields and always ends on id so pages are stable.
func (r *BaseRepo[T]) OrderBy(orderBy string) []string {
	var clauses []string
	for _, f := range filter.ParseOrder(orderBy, r.orderable) {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, f.Field+" "+dir)
	}
	return append(clauses, "id ASC")
}

// LikePattern wraps search for a substring ILIKE.
func LikePattern(search string) string {
	return "%" + search + "%"
}

// Qualified prefixes every column with a table alias and joins them.
func Qualified(alias string, cols []string) string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = alias + "." + col
	}
	return strings.Join(out, ", ")
}

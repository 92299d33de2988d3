// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
)

// --- Pagination ---

// PageQuery contains list paging parameters.
type PageQuery struct {
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
	OrderBy string `form:"orderBy"`
}

// ToPage converts to the domain page. Defaults are applied by the services.
func (q PageQuery) ToPage() filter.Page {
	return filter.Page{Limit: q.Limit, Offset: q.Offset, OrderBy: q.OrderBy}
}

// DateRangeQuery is a [from, to) range of shop dates (YYYY-MM-DD).
type DateRangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// ToRange parses both bounds in loc. Empty bounds stay open; To is exclusive of
// the following day, so to=2024-01-31 includes the whole of January 31.
func (q DateRangeQuery) ToRange(loc *time.Location) (filter.DateRange, error) {
	var r filter.DateRange
	if q.From != "" {
		from, err := calendar.ParseDate(q.From, loc)
		if err != nil {
			return r, apperror.NewValidation("invalid date").WithField("from", q.From)
		}
		r.From = &from
	}
	if q.To != "" {
		to, err := calendar.ParseDate(q.To, loc)
		if err != nil {
			return r, apperror.NewValidation("invalid date").WithField("to", q.To)
		}
		end := to.AddDate(0, 0, 1)
		r.To = &end
	}
	return r, nil
}

// ParseOptionalID parses an optional id query value.
func ParseOptionalID(field, raw string) (*id.ID, error) {
	v, err := id.ParseOptional(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").WithField(field, raw)
	}
	return v, nil
}

// ParseOptionalBool parses "true"/"false"; anything else is unset.
func ParseOptionalBool(raw string) *bool {
	switch raw {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse maps a domain list result.
func NewListResponse[E any, T any](r filter.ListResult[E], mapFn func(E) T) ListResponse[T] {
	items := make([]T, len(r.Items))
	for i, item := range r.Items {
		items[i] = mapFn(item)
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func parseOptionalDate(field string, raw *string, loc *time.Location) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t, nil
	}
	t, err := calendar.ParseDate(*raw, loc)
	if err != nil {
		return nil, apperror.NewValidation("invalid date").WithField(field, *raw)
	}
	return &t, nil
}

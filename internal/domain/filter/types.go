// Package filter holds the list, pagination and date-range types shared by read queries.
package filter

import (
	"strings"
	"time"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Page describes pagination and ordering of a list query.
type Page struct {
	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	Limit  int
	Offset int
}

// Normalize applies defaults and bounds.
func (p Page) Normalize(defaultOrder string) Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if strings.TrimSpace(p.OrderBy) == "" {
		p.OrderBy = defaultOrder
	}
	return p
}

// Window returns the [offset, offset+limit) slice bounds for n items.
func (p Page) Window(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + p.Limit
	if p.Limit <= 0 || end > n {
		end = n
	}
	return start, end
}

// DateRange is a half-open [From, To) interval. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls into the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && !t.Before(*r.To) {
		return false
	}
	return true
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// OrderField is a parsed OrderBy entry.
type OrderField struct {
	Field string
	Desc  bool
}

// ParseOrder splits "-created_at,name" into fields, keeping only whitelisted names.
func ParseOrder(orderBy string, allowed map[string]bool) []OrderField {
	var out []OrderField
	for _, part := range strings.Split(orderBy, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := OrderField{Field: part}
		if strings.HasPrefix(part, "-") {
			f = OrderField{Field: part[1:], Desc: true}
		}
		if allowed[f.Field] {
			out = append(out, f)
		}
	}
	return out
}

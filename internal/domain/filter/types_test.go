package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPage_Normalize(t *testing.T) {
	p := Page{}.Normalize("name")
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, "name", p.OrderBy)

	p = Page{Limit: 10_000, Offset: -3, OrderBy: "-sku"}.Normalize("name")
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, "-sku", p.OrderBy)
}

func TestPage_Window(t *testing.T) {
	start, end := Page{Limit: 2, Offset: 1}.Window(5)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)

	start, end = Page{Limit: 10, Offset: 8}.Window(5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}

func TestDateRange_Contains(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	r := DateRange{From: &from, To: &to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to.Add(-time.Nanosecond)))
	assert.False(t, r.Contains(to))
	assert.True(t, DateRange{}.Contains(to))
}

func TestParseOrder(t *testing.T) {
	allowed := map[string]bool{"name": true, "created_at": true}

	got := ParseOrder("-created_at, name, password", allowed)
	assert.Equal(t, []OrderField{{Field: "created_at", Desc: true}, {Field: "name"}}, got)
	assert.Empty(t, ParseOrder("drop table", allowed))
}

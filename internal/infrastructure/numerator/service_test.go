package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "shopledger/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

type fakeQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql, q.args = sql, args
	return q.row
}

func TestNextValue_UsesPerDayKey(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{val: 7}}
	svc := New(QuerierFunc(func(context.Context) Querier { return q }))

	day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	n, err := svc.NextValue(context.Background(), corenumerator.InvoiceConfig("owner-1"), day)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, []any{"INV:owner-1:20240115"}, q.args)
	assert.Contains(t, q.sql, "ON CONFLICT (key) DO UPDATE")
	assert.Contains(t, q.sql, "RETURNING current_val")
}

func TestNextValue_WrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	q := &fakeQuerier{row: fakeRow{err: boom}}
	svc := New(QuerierFunc(func(context.Context) Querier { return q }))

	_, err := svc.NextValue(context.Background(), corenumerator.SKUConfig("owner-1"), time.Now())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []any{"SKU:owner-1"}, q.args)
}

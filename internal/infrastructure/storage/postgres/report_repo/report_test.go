package report_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/dashboard"
)

func TestReportRepo_SaleRowsQuery(t *testing.T) {
	repo := NewReportRepo(nil)
	ownerID := id.New()
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	sql, args, err := repo.saleRowsQuery(ownerID, from, to, "completed").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN products p ON p.id = s.product_id LEFT JOIN customers c ON c.id = s.customer_id")
	assert.Contains(t, sql, "WHERE s.owner_id = $1 AND s.sale_date >= $2 AND s.sale_date < $3 AND s.status = $4")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY s.sale_date ASC, s.invoice_number ASC"))
	assert.Equal(t, []any{ownerID.String(), from, to, "completed"}, args)

	sql, args, err = repo.saleRowsQuery(ownerID, from, to, "").ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "s.status =")
	assert.Len(t, args, 3)
}

func TestComputeSQL_CountsOnlySettledRows(t *testing.T) {
	assert.Contains(t, computeSQL, "s.status = 'completed'")
	assert.Contains(t, computeSQL, "pu.status = 'received'")
	assert.Contains(t, computeSQL, "d.status NOT IN ('paid', 'cancelled')")
}

func TestDashboardRepo_Localize(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*60*60)
	repo := NewDashboardRepo(nil, tashkent)

	st := &dashboard.Stats{Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	repo.localize(st)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, tashkent), st.Date)
}

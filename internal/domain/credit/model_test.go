package credit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

func newDebt(amount string, due time.Time) *Debt {
	return &Debt{
		ID:         id.New(),
		Amount:     types.MustMoney(amount),
		PaidAmount: types.Zero(),
		DueDate:    due,
		Status:     StatusPending,
	}
}

func TestDueDateFor(t *testing.T) {
	sold := time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DueDateFor(sold, time.UTC))
}

func TestDebtApply(t *testing.T) {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	d := newDebt("1050", now.AddDate(0, 0, 25))

	require.NoError(t, d.Apply(types.MustMoney("50"), now))
	assert.Equal(t, StatusPartiallyPaid, d.Status)
	assert.True(t, d.Remaining().Equal(types.MustMoney("1000")))
	assert.Nil(t, d.PaidDate)

	err := d.Apply(types.MustMoney("1000.01"), now)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpayment))
	assert.True(t, d.PaidAmount.Equal(types.MustMoney("50")))

	require.NoError(t, d.Apply(types.MustMoney("1000"), now))
	assert.Equal(t, StatusPaid, d.Status)
	assert.True(t, d.Remaining().IsZero())
	require.NotNil(t, d.PaidDate)

	err = d.Apply(types.MustMoney("1"), now)
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpayment))
}

func TestDebtApply_RejectsInvalidAmounts(t *testing.T) {
	now := time.Now()
	for _, amount := range []string{"0", "-5", "0.001"} {
		d := newDebt("100", now)
		err := d.Apply(types.MustMoney(amount), now)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPayment), amount)
	}

	d := newDebt("100", now)
	require.NoError(t, d.Cancel(now))
	err := d.Apply(types.MustMoney("1"), now)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidPayment))
}

func TestDebtCancel_PaidIsFinal(t *testing.T) {
	now := time.Now()
	d := newDebt("10", now)
	require.NoError(t, d.Apply(types.MustMoney("10"), now))
	err := d.Cancel(now)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	assert.Equal(t, StatusPaid, d.Status)
}

func TestDebtOverdueFlags(t *testing.T) {
	today := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	due := today.AddDate(0, 0, -3)

	pending := newDebt("100", due)
	assert.True(t, pending.IsOverdue(today))
	assert.True(t, pending.ShouldMarkOverdue(today))
	assert.Equal(t, 3, pending.DaysOverdue(today, time.UTC))

	partial := newDebt("100", due)
	require.NoError(t, partial.Apply(types.MustMoney("10"), due))
	assert.True(t, partial.IsOverdue(today))
	assert.False(t, partial.ShouldMarkOverdue(today), "partially paid debts keep their status")

	notYet := newDebt("100", today)
	assert.False(t, notYet.IsOverdue(today))
	assert.Zero(t, notYet.DaysOverdue(today, time.UTC))

	paid := newDebt("100", due)
	require.NoError(t, paid.Apply(types.MustMoney("100"), due))
	assert.False(t, paid.IsOverdue(today))
}

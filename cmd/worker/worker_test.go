package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/config"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

func newTestWorker(env *apptest.Env) *Worker {
	return NewWorker(WorkerDeps{
		Services: env.Services,
		Queue:    env.Backend.Queue,
	}, config.WorkerConfig{}, logger.Nop())
}

func TestWorker_MarkOverdue(t *testing.T) {
	env := apptest.New(t)
	product := env.Product(t, "ABC1", 10, "100", "150")
	buyer := env.Customer(t, "Aziz", "+998 90 123-45-67")

	_, err := env.Ledger.RecordSale(env.Ctx, ledger.SaleInput{
		ProductID:     product.ID,
		CustomerID:    &buyer.ID,
		Quantity:      types.Qty(1),
		PaymentMethod: ledger.PaymentCredit,
	})
	require.NoError(t, err)

	w := newTestWorker(env)
	assert.EqualValues(t, 0, w.MarkOverdue(env.Ctx))

	env.Clock.Advance(31 * 24 * time.Hour)
	assert.EqualValues(t, 1, w.MarkOverdue(env.Ctx))

	debts, err := env.Credit.ListDebts(env.Ctx, credit.DebtFilter{})
	require.NoError(t, err)
	require.Len(t, debts.Items, 1)
	assert.Equal(t, credit.StatusOverdue, debts.Items[0].Status)
}

func TestWorker_RefreshSnapshotsForEveryOwner(t *testing.T) {
	env := apptest.New(t)
	for _, name := range []string{"first", "second"} {
		_, err := env.Auth.Register(env.Ctx, auth.RegisterRequest{
			Username: name,
			Email:    name + "@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)
	}

	w := newTestWorker(env)
	assert.Equal(t, 2, w.RefreshSnapshots(env.Ctx))
}

func TestWorker_RelayRollups(t *testing.T) {
	env := apptest.New(t)
	buyer := env.Customer(t, "Aziz", "+998 90 123-45-67")

	require.NoError(t, env.Backend.Queue.Enqueue(env.Ctx,
		rollup.CustomerStats(env.OwnerID, buyer.ID), errors.New("transient")))

	w := newTestWorker(env)
	assert.Equal(t, 1, w.RelayRollups(env.Ctx))
	assert.Equal(t, 0, w.RelayRollups(env.Ctx))
}

func TestWorker_CleanupWithoutPurgeIsNoop(t *testing.T) {
	env := apptest.New(t)
	w := newTestWorker(env)
	w.Cleanup(env.Ctx)

	called := false
	w.deps.Purge = func(_ context.Context, retention time.Duration) (int64, error) {
		called = true
		assert.Equal(t, 48*time.Hour, retention)
		return 3, nil
	}
	w.cfg.OutboxRetention = 48 * time.Hour
	w.Cleanup(env.Ctx)
	assert.True(t, called)
}

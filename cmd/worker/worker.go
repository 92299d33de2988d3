package main

import (
	"context"
	"time"

	"shopledger/internal/app"
	"shopledger/internal/config"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// WorkerDeps are the collaborators of Worker.
type WorkerDeps struct {
	Services *app.Services
	Queue    rollup.DurableQueue

	// Purge drops relayed outbox messages older than the retention; optional.
	Purge func(ctx context.Context, retention time.Duration) (int64, error)
}

// Worker runs the periodic jobs on their own tickers.
type Worker struct {
	deps WorkerDeps
	cfg  config.WorkerConfig
	log  *logger.Logger
}

// NewWorker creates a worker.
func NewWorker(deps WorkerDeps, cfg config.WorkerConfig, log *logger.Logger) *Worker {
	return &Worker{
		deps: deps,
		cfg:  cfg,
		log:  log.WithComponent("worker"),
	}
}

// Run blocks until ctx is cancelled. Every job runs once at start.
func (w *Worker) Run(ctx context.Context) {
	relay := time.NewTicker(w.cfg.RelayInterval)
	defer relay.Stop()
	overdue := time.NewTicker(w.cfg.OverdueInterval)
	defer overdue.Stop()
	snapshot := time.NewTicker(w.cfg.SnapshotInterval)
	defer snapshot.Stop()
	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	w.RelayRollups(ctx)
	w.MarkOverdue(ctx)
	w.RefreshSnapshots(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-relay.C:
			w.RelayRollups(ctx)
		case <-overdue.C:
			w.MarkOverdue(ctx)
		case <-snapshot.C:
			w.RefreshSnapshots(ctx)
		case <-cleanup.C:
			w.Cleanup(ctx)
		}
	}
}

// RelayRollups retries queued statistic refreshes.
func (w *Worker) RelayRollups(ctx context.Context) int {
	if w.deps.Queue == nil {
		return 0
	}
	n, err := w.deps.Queue.Relay(ctx, w.deps.Services.Rollups.Handle)
	if err != nil && ctx.Err() == nil {
		w.log.Errorw("rollup relay failed", "error", err)
	}
	if n > 0 {
		w.log.Debugw("relayed rollup jobs", "count", n)
	}
	return n
}

// MarkOverdue flips unpaid debts past their due date.
func (w *Worker) MarkOverdue(ctx context.Context) int64 {
	n, err := w.deps.Services.Credit.MarkOverdue(ctx)
	if err != nil && ctx.Err() == nil {
		w.log.Errorw("mark overdue failed", "error", err)
	}
	return n
}

// RefreshSnapshots recomputes today's snapshot for every active owner.
// One failing owner does not stop the others.
func (w *Worker) RefreshSnapshots(ctx context.Context) int {
	owners, err := w.deps.Services.Auth.Owners(ctx)
	if err != nil {
		w.log.Errorw("list owners failed", "error", err)
		return 0
	}

	today := w.deps.Services.Dashboard.Today()
	refreshed := 0
	for _, ownerID := range owners {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.deps.Services.Dashboard.RecomputeForOwner(ctx, ownerID, today); err != nil {
			w.log.Errorw("snapshot refresh failed", "owner_id", ownerID, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed
}

// Cleanup drops old relayed outbox messages.
func (w *Worker) Cleanup(ctx context.Context) {
	if w.deps.Purge == nil {
		return
	}
	n, err := w.deps.Purge(ctx, w.cfg.OutboxRetention)
	if err != nil {
		w.log.Errorw("outbox cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up outbox messages", "count", n)
	}
}

// Package rollup refreshes cached statistics after ledger writes.
//
// Refreshes run inline right after the originating transaction commits. A
// failed refresh never fails the write that triggered it: the job is handed to
// a durable Queue and retried by the worker.
package rollup

import (
	"context"
	"fmt"
	"sync"

	"shopledger/internal/core/id"
	"shopledger/pkg/logger"
)

// Kind identifies the statistic family a job recomputes.
type Kind string

const (
	KindCustomerStats  Kind = "customer_stats"
	KindCategoryRollup Kind = "category_rollup"
)

// Job asks for one target's cached statistics to be recomputed.
type Job struct {
	Kind     Kind  `json:"kind"`
	OwnerID  id.ID `json:"ownerId"`
	TargetID id.ID `json:"targetId"`
}

// CustomerStats is the refresh job for one customer.
func CustomerStats(ownerID, customerID id.ID) Job {
	return Job{Kind: KindCustomerStats, OwnerID: ownerID, TargetID: customerID}
}

// CategoryRollup is the refresh job for one category.
func CategoryRollup(ownerID, categoryID id.ID) Job {
	return Job{Kind: KindCategoryRollup, OwnerID: ownerID, TargetID: categoryID}
}

// Handler recomputes one job. Handlers must be idempotent.
type Handler func(ctx context.Context, job Job) error

// Queue stores jobs whose inline run failed.
type Queue interface {
	Enqueue(ctx context.Context, job Job, cause error) error
}

// DurableQueue is a Queue the worker drains.
type DurableQueue interface {
	Queue

	// Relay runs due jobs through handle and returns how many succeeded.
	Relay(ctx context.Context, handle Handler) (int, error)
}

// Dispatcher routes jobs to the registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
	queue    Queue
}

// NewDispatcher creates a dispatcher backed by queue (nil disables retries).
func NewDispatcher(queue Queue) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Kind]Handler),
		queue:    queue,
	}
}

// Register installs the handler for kind, replacing any previous one.
func (d *Dispatcher) Register(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Handle runs a single job and reports its error. The worker relay uses it.
func (d *Dispatcher) Handle(ctx context.Context, job Job) error {
	d.mu.RLock()
	h, ok := d.handlers[job.Kind]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no rollup handler for %q", job.Kind)
	}
	return h(ctx, job)
}

// Dispatch runs jobs inline, best-effort. Duplicates and nil targets are skipped.
// Failed jobs are logged and enqueued for retry.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs ...Job) {
	seen := make(map[Job]struct{}, len(jobs))
	for _, job := range jobs {
		if id.IsNil(job.TargetID) {
			continue
		}
		if _, dup := seen[job]; dup {
			continue
		}
		seen[job] = struct{}{}

		err := d.Handle(ctx, job)
		if err == nil {
			continue
		}

		logger.Warn(ctx, "rollup refresh failed, queueing retry",
			"kind", job.Kind,
			"target_id", job.TargetID,
			"error", err,
		)
		if d.queue == nil {
			continue
		}
		if qerr := d.queue.Enqueue(ctx, job, err); qerr != nil {
			logger.Error(ctx, "failed to enqueue rollup job",
				"kind", job.Kind,
				"target_id", job.TargetID,
				"error", qerr,
			)
		}
	}
}

package memory

import (
	"context"
	"time"

	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// maxRetries matches the PostgreSQL relay.
const maxRetries = 5

type outboxEntry struct {
	job       rollup.Job
	lastError string
	retries   int
	createdAt time.Time
}

// Queue implements rollup.Queue in memory.
type Queue struct {
	store *Store
}

// NewQueue creates a rollup retry queue.
func NewQueue(store *Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) Enqueue(ctx context.Context, job rollup.Job, cause error) error {
	defer q.store.guard(ctx)()
	e := outboxEntry{job: job, createdAt: q.store.now()}
	if cause != nil {
		e.lastError = cause.Error()
	}
	q.store.data.outbox = append(q.store.data.outbox, e)
	return nil
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.store.mu.Lock()
	defer q.store.mu.Unlock()
	return len(q.store.data.outbox)
}

// Relay runs every pending job through handle. Jobs that fail stay queued until
// they exhaust maxRetries, after which they are dropped and logged.
func (q *Queue) Relay(ctx context.Context, handle rollup.Handler) (int, error) {
	q.store.mu.Lock()
	pending := q.store.data.outbox
	q.store.data.outbox = nil
	q.store.mu.Unlock()

	var (
		done  int
		retry []outboxEntry
	)
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			retry = append(retry, e)
			continue
		}
		if err := handle(ctx, e.job); err != nil {
			e.retries++
			e.lastError = err.Error()
			if e.retries >= maxRetries {
				logger.Error(ctx, "rollup job dropped after max retries",
					"kind", e.job.Kind,
					"target_id", e.job.TargetID,
					"error", err,
				)
				continue
			}
			retry = append(retry, e)
			continue
		}
		done++
	}

	if len(retry) > 0 {
		q.store.mu.Lock()
		q.store.data.outbox = append(retry, q.store.data.outbox...)
		q.store.mu.Unlock()
	}
	return done, ctx.Err()
}

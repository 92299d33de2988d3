package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// MaxOutboxRetries is how many failed runs a job gets before it is parked as failed.
const MaxOutboxRetries = 5

// OutboxMessage is one queued rollup job.
type OutboxMessage struct {
	ID          id.ID        `db:"id"`
	Kind        string       `db:"kind"`
	Payload     []byte       `db:"payload"`
	Status      OutboxStatus `db:"status"`
	RetryCount  int          `db:"retry_count"`
	LastError   *string      `db:"last_error"`
	NextRetryAt *time.Time   `db:"next_retry_at"`
	CreatedAt   time.Time    `db:"created_at"`
	PublishedAt *time.Time   `db:"published_at"`
}

// Queue is the transactional outbox behind rollup retries.
type Queue struct {
	txManager *TxManager
	batchSize uint64
	builder   squirrel.StatementBuilderType
	now       func() time.Time
}

var _ rollup.DurableQueue = (*Queue)(nil)

// NewQueue creates an outbox queue relaying batchSize jobs per run.
func NewQueue(txManager *TxManager, batchSize int) *Queue {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Queue{
		txManager: txManager,
		batchSize: uint64(batchSize),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores a failed job. Inside a transaction it commits with the caller.
func (q *Queue) Enqueue(ctx context.Context, job rollup.Job, cause error) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal rollup job: %w", err)
	}

	var lastError *string
	if cause != nil {
		msg := cause.Error()
		lastError = &msg
	}

	sql, args, err := q.builder.
		Insert("sys_outbox").
		Columns("id", "kind", "payload", "status", "last_error", "created_at").
		Values(id.New(), string(job.Kind), payload, OutboxStatusPending, lastError, q.now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := q.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// Relay locks a batch of due messages, runs them through handle and records the
// outcome. Handlers run outside the relay transaction so their own writes commit
// independently; SKIP LOCKED lets several workers relay in parallel.
func (q *Queue) Relay(ctx context.Context, handle rollup.Handler) (int, error) {
	processed := 0
	err := q.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		messages, err := q.fetchDue(txCtx)
		if err != nil {
			return err
		}

		for _, msg := range messages {
			if ctx.Err() != nil {
				break
			}
			var job rollup.Job
			if err := json.Unmarshal(msg.Payload, &job); err != nil {
				logger.Error(ctx, "undecodable outbox message parked", "id", msg.ID, "error", err)
				if err := q.markFailed(txCtx, msg, err, true); err != nil {
					return err
				}
				continue
			}

			if herr := handle(ctx, job); herr != nil {
				final := msg.RetryCount+1 >= MaxOutboxRetries
				if final {
					logger.Error(ctx, "rollup job parked after max retries",
						"kind", job.Kind,
						"target_id", job.TargetID,
						"error", herr,
					)
				}
				if err := q.markFailed(txCtx, msg, herr, final); err != nil {
					return err
				}
				continue
			}

			if err := q.markPublished(txCtx, msg); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	if err != nil {
		return processed, fmt.Errorf("relay outbox: %w", err)
	}
	return processed, ctx.Err()
}

func (q *Queue) fetchDue(ctx context.Context) ([]*OutboxMessage, error) {
	sql, args, err := q.builder.
		Select("id", "kind", "payload", "status", "retry_count", "last_error", "next_retry_at", "created_at", "published_at").
		From("sys_outbox").
		Where(squirrel.Eq{"status": OutboxStatusPending}).
		Where(squirrel.Or{
			squirrel.Eq{"next_retry_at": nil},
			squirrel.LtOrEq{"next_retry_at": q.now()},
		}).
		OrderBy("created_at").
		Limit(q.batchSize).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fetch: %w", err)
	}

	var messages []*OutboxMessage
	if err := pgxscan.Select(ctx, q.txManager.GetQuerier(ctx), &messages, sql, args...); err != nil {
		return nil, fmt.Errorf("fetch outbox messages: %w", err)
	}
	return messages, nil
}

// backoff doubles the wait per attempt: 1, 2, 4, 8 minutes.
func backoff(retry int) time.Duration {
	return time.Duration(1<<retry) * time.Minute
}

func (q *Queue) markFailed(ctx context.Context, msg *OutboxMessage, cause error, final bool) error {
	status := OutboxStatusPending
	if final {
		status = OutboxStatusFailed
	}
	sql, args, err := q.builder.
		Update("sys_outbox").
		Set("retry_count", squirrel.Expr("retry_count + 1")).
		Set("last_error", cause.Error()).
		Set("next_retry_at", q.now().Add(backoff(msg.RetryCount))).
		Set("status", status).
		Where(squirrel.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := q.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update failed message: %w", err)
	}
	return nil
}

func (q *Queue) markPublished(ctx context.Context, msg *OutboxMessage) error {
	sql, args, err := q.builder.
		Update("sys_outbox").
		Set("status", OutboxStatusPublished).
		Set("published_at", q.now()).
		Where(squirrel.Eq{"id": msg.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := q.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("mark message published: %w", err)
	}
	return nil
}

// PurgePublished removes published messages older than before.
func (q *Queue) PurgePublished(ctx context.Context, before time.Time) (int64, error) {
	sql, args, err := q.builder.
		Delete("sys_outbox").
		Where(squirrel.Eq{"status": OutboxStatusPublished}).
		Where(squirrel.Lt{"published_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := q.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}

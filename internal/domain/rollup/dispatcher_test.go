package rollup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/id"
)

type recordingQueue struct {
	jobs []Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job Job, _ error) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func TestDispatcher_RunsHandlersOnce(t *testing.T) {
	q := &recordingQueue{}
	d := NewDispatcher(q)

	var calls []Job
	d.Register(KindCustomerStats, func(_ context.Context, job Job) error {
		calls = append(calls, job)
		return nil
	})

	owner, customer := id.New(), id.New()
	job := CustomerStats(owner, customer)
	d.Dispatch(context.Background(), job, job, CustomerStats(owner, id.Nil()))

	assert.Equal(t, []Job{job}, calls)
	assert.Empty(t, q.jobs)
}

func TestDispatcher_EnqueuesFailures(t *testing.T) {
	q := &recordingQueue{}
	d := NewDispatcher(q)
	d.Register(KindCategoryRollup, func(context.Context, Job) error {
		return errors.New("lock timeout")
	})

	job := CategoryRollup(id.New(), id.New())
	d.Dispatch(context.Background(), job)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, job, q.jobs[0])
}

func TestDispatcher_HandleUnknownKind(t *testing.T) {
	d := NewDispatcher(nil)
	err := d.Handle(context.Background(), Job{Kind: "nope", TargetID: id.New()})
	assert.Error(t, err)
}

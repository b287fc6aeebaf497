package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := OpenMemoryQueue()
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

func TestJobRoundtrip(t *testing.T) {
	job := &Job{
		TenantID:    uuid.New(),
		ResourceIDs: []uuid.UUID{uuid.New(), uuid.New()},
		EnqueuedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	got, err := UnmarshalJob(MarshalJob(job))
	require.NoError(t, err)
	assert.Equal(t, job.TenantID, got.TenantID)
	assert.Equal(t, job.ResourceIDs, got.ResourceIDs)
	assert.True(t, job.EnqueuedAt.Equal(got.EnqueuedAt))
}

func TestUnmarshalJob_Garbage(t *testing.T) {
	_, err := UnmarshalJob([]byte{0xff, 0x01, 0x02})
	assert.Error(t, err)
}

func TestQueue_FIFO(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	first := &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}}
	second := &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}}
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TenantID, got.TenantID)

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.TenantID, got.TenantID)

	n, err = q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueue_DropsUndecodableRecord(t *testing.T) {
	q := newTestQueue(t)

	// A corrupt record at the head must not block everything behind it.
	job := &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}, EnqueuedAt: time.Now().UTC()}
	require.NoError(t, q.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(jobKey(0), []byte{0xff, 0x01, 0x02}); err != nil {
			return err
		}
		return txn.Set(jobKey(1), MarshalJob(job))
	}))

	got, ok, err := q.TryDequeue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, job.TenantID, got.TenantID)

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueue_EmptyJobDropped(t *testing.T) {
	q := newTestQueue(t)

	require.NoError(t, q.Enqueue(context.Background(), &Job{TenantID: uuid.New()}))

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	job := &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}}
	go func() {
		time.Sleep(50 * time.Millisecond)
		q.Enqueue(ctx, job)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	got, err := q.Dequeue(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, job.TenantID, got.TenantID)
}

func TestQueue_DequeueHonorsContext(t *testing.T) {
	q := newTestQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_EnqueueAfterClose(t *testing.T) {
	q, err := OpenMemoryQueue()
	require.NoError(t, err)
	require.NoError(t, q.Close())

	err = q.Enqueue(context.Background(), &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_SetsEnqueuedAt(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &Job{TenantID: uuid.New(), ResourceIDs: []uuid.UUID{uuid.New()}}))

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.False(t, got.EnqueuedAt.IsZero())
}

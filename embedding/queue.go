package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const (
	jobKeyPrefix      = "job:"
	sequenceBandwidth = 100
	pollInterval      = 250 * time.Millisecond
)

// ErrQueueClosed indicates an operation on a closed queue.
var ErrQueueClosed = errors.New("queue is closed")

// Sender is the enqueue side of the queue, all the ingest pipeline
// needs to see.
type Sender interface {
	Enqueue(ctx context.Context, job *Job) error
}

// Queue is a durable FIFO job queue backed by BadgerDB. Jobs survive
// process restarts; ordering follows a monotonic badger sequence.
type Queue struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger
}

var _ Sender = (*Queue)(nil)

type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenQueue opens a durable queue at the given directory, creating it
// if needed.
func OpenQueue(path string) (*Queue, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return openQueue(badger.DefaultOptions(path))
}

// OpenMemoryQueue opens an in-memory queue for tests and ephemeral use.
func OpenMemoryQueue() (*Queue, error) {
	return openQueue(badger.DefaultOptions("").WithInMemory(true))
}

func openQueue(opts badger.Options) (*Queue, error) {
	logger := slog.Default().With("component", "embedding-queue")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	seq, err := db.GetSequence([]byte("job-seq"), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Queue{db: db, seq: seq, logger: logger}, nil
}

// Enqueue appends a job. Jobs without resource IDs are dropped
// silently, there is nothing to embed.
func (q *Queue) Enqueue(_ context.Context, job *Job) error {
	if job == nil || len(job.ResourceIDs) == 0 {
		return nil
	}
	if q.db.IsClosed() {
		return ErrQueueClosed
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	n, err := q.seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	err = q.db.Update(func(txn *badger.Txn) error {
		return txn.Set(jobKey(n), MarshalJob(job))
	})
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}

	q.logger.Debug("job enqueued", "tenant", job.TenantID, "resources", len(job.ResourceIDs))
	return nil
}

// Dequeue removes and returns the oldest job, blocking until one is
// available or the context is done.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		job, ok, err := q.tryDequeue()
		if err != nil {
			return nil, err
		}
		if ok {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// TryDequeue removes and returns the oldest job without blocking.
// The second return is false when the queue is empty.
func (q *Queue) TryDequeue() (*Job, bool, error) {
	return q.tryDequeue()
}

func (q *Queue) tryDequeue() (*Job, bool, error) {
	if q.db.IsClosed() {
		return nil, false, ErrQueueClosed
	}

	var job *Job
	err := q.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			decoded, err := UnmarshalJob(val)
			if err != nil {
				// An undecodable record would block the head forever.
				q.logger.Warn("dropping undecodable job", "key", string(item.Key()), "err", err)
				if err := txn.Delete(item.KeyCopy(nil)); err != nil {
					return err
				}
				continue
			}

			job = decoded
			return txn.Delete(item.KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return job, job != nil, nil
}

// Len counts the queued jobs.
func (q *Queue) Len() (int, error) {
	if q.db.IsClosed() {
		return 0, ErrQueueClosed
	}
	count := 0
	err := q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close releases the sequence and closes the database.
func (q *Queue) Close() error {
	if q.db.IsClosed() {
		return nil
	}
	if err := q.seq.Release(); err != nil {
		q.logger.Warn("release sequence", "err", err)
	}
	return q.db.Close()
}

func jobKey(n uint64) []byte {
	key := make([]byte, len(jobKeyPrefix)+8)
	copy(key, jobKeyPrefix)
	binary.BigEndian.PutUint64(key[len(jobKeyPrefix):], n)
	return key
}

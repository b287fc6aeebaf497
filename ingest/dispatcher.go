package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Dispatcher runs syncs asynchronously on a worker pool. Validation
// happens synchronously in Dispatch so callers get bad requests back
// immediately; the sync itself runs in the background.
type Dispatcher struct {
	pipeline *Pipeline
	pool     *ants.Pool
	logger   *slog.Logger
	closed   atomic.Bool
}

// NewDispatcher creates a dispatcher over the pipeline. poolSize <= 0
// defaults to half the CPUs, minimum 1.
func NewDispatcher(pipeline *Pipeline, poolSize int) (*Dispatcher, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU() / 2
		if poolSize < 1 {
			poolSize = 1
		}
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		pipeline: pipeline,
		pool:     pool,
		logger:   slog.Default().With("component", "sync-dispatcher"),
	}, nil
}

// Dispatch validates the request and submits the sync to the pool.
// Errors during the background run are logged, not returned.
func (d *Dispatcher) Dispatch(req *SyncRequest) error {
	if d.closed.Load() {
		return ErrDispatcherClosed
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return d.pool.Submit(func() {
		if _, err := d.pipeline.Run(context.Background(), req); err != nil {
			d.logger.Error("background sync failed", "tenant", req.TenantID, "source", req.Source, "err", err)
		}
	})
}

// Release drains and releases the worker pool.
// The dispatcher should not be used after calling Release.
func (d *Dispatcher) Release() {
	if d.closed.CompareAndSwap(false, true) {
		d.pool.Release()
	}
}

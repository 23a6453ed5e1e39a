// Package worker runs recompute jobs pulled from the backfill queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/prospect/internal/adapters/mq/queue"
	"github.com/okian/prospect/pkg/logger"
	"github.com/okian/prospect/pkg/metrics"
)

// Job outcomes recorded in metrics.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Recomputer recomputes and persists one athlete's star rating. changed
// reports whether the stored value moved.
type Recomputer interface {
	Recompute(ctx context.Context, athleteID string) (changed bool, err error)
}

// RecomputeFunc adapts a function to Recomputer.
type RecomputeFunc func(ctx context.Context, athleteID string) (bool, error)

// Recompute calls f.
func (f RecomputeFunc) Recompute(ctx context.Context, athleteID string) (bool, error) {
	return f(ctx, athleteID)
}

// Source is the receive side of a job queue.
type Source interface {
	Dequeue() <-chan queue.Job
	Len() int
}

// Stats counts processed jobs.
type Stats struct {
	Processed int
	Changed   int
	Failed    int
}

type counters struct {
	processed atomic.Int64
	changed   atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker drains a Source until it closes or ctx is done.
type InMemoryWorker struct {
	source Source
	handle Recomputer
	name   string
	counts *counters
	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(source Source, handle Recomputer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source: source,
		handle: handle,
		name:   "worker",
		counts: &counters{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the source is drained or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	jobs := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.UpdateQueueSize(w.source.Len())
			w.process(ctx, job)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	changed, err := w.handle.Recompute(ctx, job.AthleteID)
	ms := float64(time.Since(start).Microseconds()) / 1000
	w.counts.processed.Add(1)

	switch {
	case err != nil:
		w.counts.failed.Add(1)
		metrics.RecordJobProcessed(OutcomeFailed, ms)
		metrics.RecordErrorByComponent("worker", "recompute_failed")
		w.logger.Error(ctx, "recompute failed",
			logger.String("run_id", job.RunID),
			logger.String("athlete_id", job.AthleteID),
			logger.Error(err),
		)
	case changed:
		w.counts.changed.Add(1)
		metrics.RecordJobProcessed(OutcomeChanged, ms)
	default:
		metrics.RecordJobProcessed(OutcomeUnchanged, ms)
	}
}

// Stats returns the worker's counters.
func (w *InMemoryWorker) Stats() Stats {
	return Stats{
		Processed: int(w.counts.processed.Load()),
		Changed:   int(w.counts.changed.Load()),
		Failed:    int(w.counts.failed.Load()),
	}
}

// Pool runs a fixed number of workers sharing one counter set.
type Pool struct {
	workers []*InMemoryWorker
	counts  *counters
	wg      sync.WaitGroup
	started atomic.Bool
	logger  logger.Logger
}

// NewPool creates n workers over source. n < 1 is treated as 1.
func NewPool(n int, source Source, handle Recomputer) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, n),
		counts:  &counters{},
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range n {
		p.workers[i] = NewInMemoryWorker(source, handle,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(p.counts),
		)
	}
	metrics.UpdateWorkerCount(n)
	return p
}

// Start launches every worker. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	p.logger.Debug(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Wait blocks until every worker has exited, or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Stats returns counters aggregated over all workers.
func (p *Pool) Stats() Stats {
	return Stats{
		Processed: int(p.counts.processed.Load()),
		Changed:   int(p.counts.changed.Load()),
		Failed:    int(p.counts.failed.Load()),
	}
}

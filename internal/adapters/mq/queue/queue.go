// Package queue provides the bounded job queue feeding the recompute workers.
package queue

import (
	"context"
	"sync"

	"github.com/okian/prospect/pkg/metrics"
)

const defaultCapacity = 1_024

// Job asks a worker to recompute one athlete's star rating.
type Job struct {
	RunID     string
	AthleteID string
}

// Key identifies a job within its run.
func (j Job) Key() string { return j.RunID + ":" + j.AthleteID }

// Queue offers blocking enqueue and channel-based dequeue.
type Queue interface {
	// EnqueueWait blocks until j is queued, the queue closes (ErrClosed) or
	// ctx is done.
	EnqueueWait(ctx context.Context, j Job) error
	// Dequeue returns the receive side. It is closed after Close once drained.
	Dequeue() <-chan Job
	// Len is the number of jobs waiting.
	Len() int
	Cap() int
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates an empty queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// EnqueueWait holds the read lock while blocked, so Close waits for
// in-flight producers instead of racing them.
func (q *InMemoryQueue) EnqueueWait(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected()
		return ErrClosed
	}
	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return nil
	case <-ctx.Done():
		metrics.RecordQueueRejected()
		return ctx.Err()
	}
}

func (q *InMemoryQueue) Dequeue() <-chan Job { return q.jobs }

func (q *InMemoryQueue) Len() int { return len(q.jobs) }

func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close stops accepting jobs. Already queued jobs stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}

	for _, id := range []string{"a1", "a2"} {
		if err := q.EnqueueWait(ctx, Job{RunID: "r", AthleteID: id}); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}

	got := <-q.Dequeue()
	if got.AthleteID != "a1" || got.Key() != "r:a1" {
		t.Errorf("unexpected job %+v", got)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
}

func TestInMemoryQueue_EnqueueWaitBlocksUntilSpace(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, Job{AthleteID: "a1"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- q.EnqueueWait(ctx, Job{AthleteID: "a2"}) }()

	select {
	case <-done:
		t.Fatal("EnqueueWait returned while the queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	<-q.Dequeue()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(time.Second):
		t.Fatal("EnqueueWait did not unblock")
	}
}

func TestInMemoryQueue_EnqueueWaitHonoursContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	if err := q.EnqueueWait(context.Background(), Job{AthleteID: "a1"}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(ctx, Job{AthleteID: "a2"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if err := q.EnqueueWait(cancelled, Job{AthleteID: "a3"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled on a full queue, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	if err := q.EnqueueWait(ctx, Job{AthleteID: "a1"}); err != nil {
		t.Fatal(err)
	}

	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := q.EnqueueWait(ctx, Job{AthleteID: "a2"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Queued jobs drain, then the channel reports closed.
	if j, ok := <-q.Dequeue(); !ok || j.AthleteID != "a1" {
		t.Errorf("expected a1 before close, got %+v ok=%v", j, ok)
	}
	if _, ok := <-q.Dequeue(); ok {
		t.Error("expected dequeue channel to be closed")
	}
}

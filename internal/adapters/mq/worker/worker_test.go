package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/prospect/internal/adapters/mq/queue"
	worker "github.com/okian/prospect/internal/adapters/mq/worker"
	logging "github.com/okian/prospect/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockSource struct {
	jobs chan queue.Job
}

func newMockSource(jobs ...queue.Job) *mockSource {
	s := &mockSource{jobs: make(chan queue.Job, len(jobs)+1)}
	for _, j := range jobs {
		s.jobs <- j
	}
	return s
}

func (s *mockSource) Dequeue() <-chan queue.Job { return s.jobs }

func (s *mockSource) Len() int { return len(s.jobs) }

type mockRecomputer struct {
	mu      sync.Mutex
	seen    []string
	changed map[string]bool
	fail    map[string]error
}

func newMockRecomputer() *mockRecomputer {
	return &mockRecomputer{changed: map[string]bool{}, fail: map[string]error{}}
}

func (m *mockRecomputer) Recompute(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, id)
	if err := m.fail[id]; err != nil {
		return false, err
	}
	return m.changed[id], nil
}

func jobs(n int) []queue.Job {
	out := make([]queue.Job, n)
	for i := range out {
		out[i] = queue.Job{RunID: "run", AthleteID: fmt.Sprintf("a%d", i)}
	}
	return out
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker over a finite source", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx := context.Background()
		rec := newMockRecomputer()
		rec.changed["a1"] = true
		rec.fail["a2"] = errors.New("db down")

		src := newMockSource(jobs(4)...)
		close(src.jobs)
		w := worker.NewInMemoryWorker(src, rec, worker.WithName("test-worker"))

		convey.Convey("When it runs to completion", func() {
			w.Run(ctx)

			convey.Convey("Then every job is handled and outcomes are counted", func() {
				convey.So(rec.seen, convey.ShouldResemble, []string{"a0", "a1", "a2", "a3"})
				convey.So(w.Stats(), convey.ShouldResemble, worker.Stats{Processed: 4, Changed: 1, Failed: 1})
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		src := newMockSource()
		w := worker.NewInMemoryWorker(src, newMockRecomputer())

		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()
		cancel()

		convey.Convey("Then Run returns", func() {
			stopped := false
			select {
			case <-done:
				stopped = true
			case <-time.After(time.Second):
			}
			convey.So(stopped, convey.ShouldBeTrue)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool draining a closed queue", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		for _, j := range jobs(100) {
			convey.So(q.EnqueueWait(ctx, j), convey.ShouldBeNil)
		}
		convey.So(q.Close(), convey.ShouldBeNil)

		rec := newMockRecomputer()
		for i := 0; i < 100; i += 10 {
			rec.changed[fmt.Sprintf("a%d", i)] = true
		}
		var calls sync.Map
		handle := worker.RecomputeFunc(func(ctx context.Context, id string) (bool, error) {
			if _, dup := calls.LoadOrStore(id, true); dup {
				return false, fmt.Errorf("%s processed twice", id)
			}
			return rec.Recompute(ctx, id)
		})

		p := worker.NewPool(4, q, handle)
		p.Start(ctx)
		p.Start(ctx)

		convey.Convey("When waiting for completion", func() {
			err := p.Wait(ctx)

			convey.Convey("Then each job ran once and stats add up", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(p.Stats(), convey.ShouldResemble, worker.Stats{Processed: 100, Changed: 10, Failed: 0})
			})
		})
	})

	convey.Convey("Given a pool over a queue that never closes", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		runCtx, stop := context.WithCancel(context.Background())
		defer stop()
		q := queue.NewInMemoryQueue()
		p := worker.NewPool(0, q, newMockRecomputer())
		p.Start(runCtx)

		convey.Convey("Then Wait gives up with the wait context", func() {
			waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			err := p.Wait(waitCtx)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			convey.So(p.Size(), convey.ShouldEqual, 1)
		})
	})
}

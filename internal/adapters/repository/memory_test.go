package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/prospect/internal/domain/model"
)

func newTestMemoryStore(t *testing.T) Store {
	t.Helper()
	s := NewMemoryStore(context.Background())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemoryStore_Contract(t *testing.T) {
	runStoreSuite(t, newTestMemoryStore)
}

func TestMemoryStore_TreapStaysBalancedUnderUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	const n = 500
	for i := range n {
		a := athlete(fmt.Sprintf("a%03d", i), fmt.Sprintf("u%03d", i), 1.0, time.Duration(i)*time.Second)
		if err := s.Create(ctx, a); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Move every athlete to a new bucket; stale index keys must not survive.
	for i := range n {
		a, err := s.FindByID(ctx, fmt.Sprintf("a%03d", i))
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		a.StarRating = 1.0 + float64(i%9)*0.5
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	if got := nsize(s.root); got != n {
		t.Fatalf("index size = %d, want %d", got, n)
	}

	page, total, err := s.List(ctx, model.ListFilter{Limit: n})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != n || len(page) != n {
		t.Fatalf("total=%d len=%d, want %d", total, len(page), n)
	}
	for i := 1; i < len(page); i++ {
		prev := keyOf(page[i-1].StarRating, page[i-1].CreatedAt, page[i-1].ID)
		cur := keyOf(page[i].StarRating, page[i].CreatedAt, page[i].ID)
		if !prev.before(cur) {
			t.Fatalf("listing out of order at %d: %v then %v", i, prev, cur)
		}
	}
}

func TestMemoryStore_StarRangeStopsEarly(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	for i, stars := range []float64{5, 4.5, 4, 2, 1.5, 1} {
		_ = s.Create(ctx, athlete(fmt.Sprintf("a%d", i), fmt.Sprintf("u%d", i), stars, 0))
	}
	page, total, err := s.List(ctx, model.ListFilter{MinStars: 4, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(page) != 3 {
		t.Fatalf("total=%d len=%d, want 3", total, len(page))
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 50 {
				id := fmt.Sprintf("w%d-%d", w, i)
				if err := s.Create(ctx, athlete(id, id, float64(1+i%5), 0)); err != nil {
					t.Errorf("create %s: %v", id, err)
					return
				}
				if _, _, err := s.List(ctx, model.ListFilter{Limit: 5}); err != nil {
					t.Errorf("list: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n, _ := s.Count(ctx); n != 400 {
		t.Fatalf("count = %d, want 400", n)
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(context.Background(), WithMetricsUpdateInterval(time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryStore_DeterministicPriorities(t *testing.T) {
	var next uint64
	s := NewMemoryStore(context.Background(), WithPriorities(func() uint64 { next++; return next }))
	defer s.Close()

	ctx := context.Background()
	for i := range 3 {
		_ = s.Create(ctx, athlete(fmt.Sprintf("a%d", i), fmt.Sprintf("u%d", i), 3, time.Duration(i)))
	}
	// Increasing priorities make the last insert the root.
	if s.root.key.id != "a2" {
		t.Fatalf("root = %s, want a2", s.root.key.id)
	}
}

func BenchmarkMemoryStore_ListTopPage(b *testing.B) {
	ctx := context.Background()
	s := NewMemoryStore(ctx)
	defer s.Close()
	for i := range 10_000 {
		id := fmt.Sprintf("a%05d", i)
		_ = s.Create(ctx, athlete(id, id, 1.0+float64(i%9)*0.5, time.Duration(i)))
	}
	f := model.ListFilter{Limit: 20}

	b.ResetTimer()
	for b.Loop() {
		if _, _, err := s.List(ctx, f); err != nil {
			b.Fatal(err)
		}
	}
}

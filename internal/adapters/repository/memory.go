package repository

import (
	"context"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/pkg/metrics"
)

// MemoryStore is an in-memory Store. Records live in a map and a treap keeps
// them in listing order, so star-range listings stop as soon as the walk
// drops below the lower bound.
type MemoryStore struct {
	mu      sync.RWMutex
	root    *node
	byID    map[string]model.Athlete
	byOwner map[string]string
	prio    func() uint64

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stop                  chan struct{}
	closeOnce             sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:                  make(map[string]model.Athlete),
		byOwner:               make(map[string]string),
		prio:                  rand.Uint64,
		metricsUpdateInterval: 5 * time.Second,
		stop:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

// FindByID implements Store.
func (s *MemoryStore) FindByID(_ context.Context, id string) (model.Athlete, error) {
	defer observe("find_by_id", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return model.Athlete{}, ErrNotFound
	}
	return detached(a), nil
}

// FindByOwner implements Store.
func (s *MemoryStore) FindByOwner(_ context.Context, userID string) (model.Athlete, error) {
	defer observe("find_by_owner", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byOwner[userID]
	if !ok {
		return model.Athlete{}, ErrNotFound
	}
	return detached(s.byID[id]), nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, a model.Athlete) error {
	defer observe("create", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := s.byOwner[a.UserID]; ok && a.UserID != "" {
		return ErrDuplicate
	}
	s.put(a)
	return nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, a model.Athlete) error {
	defer observe("save", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[a.ID]
	if !ok {
		return ErrNotFound
	}
	if a.UserID != old.UserID {
		if other, taken := s.byOwner[a.UserID]; taken && other != a.ID && a.UserID != "" {
			return ErrDuplicate
		}
	}
	s.drop(old)
	s.put(a)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	defer observe("delete", time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	s.drop(old)
	return nil
}

// detached copies a so callers never alias the stored lists.
func detached(a model.Athlete) model.Athlete {
	a.Details = a.Details.Clone()
	return a
}

// put indexes a; callers hold the write lock.
func (s *MemoryStore) put(a model.Athlete) {
	s.byID[a.ID] = detached(a)
	if a.UserID != "" {
		s.byOwner[a.UserID] = a.ID
	}
	s.root = insert(s.root, keyOf(a.StarRating, a.CreatedAt, a.ID), s.prio())
}

// drop removes a from every index; callers hold the write lock.
func (s *MemoryStore) drop(a model.Athlete) {
	delete(s.byID, a.ID)
	if s.byOwner[a.UserID] == a.ID {
		delete(s.byOwner, a.UserID)
	}
	s.root = remove(s.root, keyOf(a.StarRating, a.CreatedAt, a.ID))
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, f model.ListFilter) ([]model.Athlete, int, error) {
	defer observe("list", time.Now())
	if f.Limit < 1 || f.Offset < 0 {
		return nil, 0, ErrInvalidLimit
	}
	lo, _ := f.Bounds()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Athlete, 0, min(f.Limit, len(s.byID)))
	total := 0
	walk(s.root, func(k indexKey) bool {
		if k.stars < lo {
			return false
		}
		a := s.byID[k.id]
		if !f.Matches(a) {
			return true
		}
		if total >= f.Offset && len(out) < f.Limit {
			out = append(out, detached(a))
		}
		total++
		return true
	})
	return out, total, nil
}

// IDs implements Store.
func (s *MemoryStore) IDs(_ context.Context, after string, limit int) ([]string, error) {
	defer observe("ids", time.Now())
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		if id > after {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return slices.Clip(ids), nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Close stops the metrics updater. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				n, _ := s.Count(ctx)
				metrics.UpdateAthletesTotal(n)
			}
		}
	}()
}

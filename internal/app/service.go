// Package service orchestrates athlete persistence and star-rating
// recomputation. It is the only writer of an athlete's stored star rating.
package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prospect/internal/adapters/repository"
	"github.com/okian/prospect/internal/domain/dedupe"
	"github.com/okian/prospect/internal/domain/rating"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
	"github.com/okian/prospect/pkg/metrics"
)

const (
	defaultPageLimit      = 20
	systemMetricsInterval = 10 * time.Second
)

// Service implements the operations exposed by the HTTP API and the CLI.
//
// Read-modify-write sequences are not atomic: two concurrent writers of the
// same athlete race and the last Save wins.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	engine  rating.Calculator
	deduper dedupe.Deduper

	backfillWorkers   int
	backfillQueueSize int
	backfillPageSize  int
	dedupeSize        int
	maxPageLimit      int

	now   func() time.Time
	newID func() string

	started      bool
	stopCh       chan struct{}
	wg           sync.WaitGroup
	backfilling  atomic.Bool
	lastBackfill atomic.Pointer[types.BackfillReport]

	logger logger.Logger
}

// New builds a Service over store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:             store,
		engine:            rating.Engine{},
		backfillWorkers:   runtime.NumCPU(),
		backfillQueueSize: 1_024,
		backfillPageSize:  500,
		dedupeSize:        100_000,
		maxPageLimit:      100,
		now:               time.Now,
		newID:             uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start begins background metric sampling. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.sampleSystemMetrics(ctx)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("backfill_workers", s.backfillWorkers),
		logger.Int("backfill_queue_size", s.backfillQueueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)
	return nil
}

// Stop halts background work and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "closing store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

func (s *Service) sampleSystemMetrics(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get().Named("service")
	}
	return l
}

// timestamp returns the clock truncated to microseconds, the precision every
// store keeps.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]any{
		"started":           started,
		"backfillWorkers":   s.backfillWorkers,
		"backfillQueueSize": s.backfillQueueSize,
		"backfillRunning":   s.backfilling.Load(),
		"dedupeSize":        s.deduper.Size(),
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["athletes"] = n
		metrics.UpdateAthletesTotal(n)
	}
	if last := s.lastBackfill.Load(); last != nil {
		stats["lastBackfill"] = *last
	}
	return stats
}

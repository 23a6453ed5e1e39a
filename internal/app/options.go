package service

import (
	"time"

	"github.com/okian/prospect/internal/domain/rating"
	"github.com/okian/prospect/pkg/logger"
)

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the rating calculator.
func WithEngine(c rating.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.engine = c
		}
	}
}

// WithBackfillWorkers sets the number of recompute workers per run.
func WithBackfillWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.backfillWorkers = n
		}
	}
}

// WithBackfillQueueSize bounds the recompute job queue.
func WithBackfillQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.backfillQueueSize = n
		}
	}
}

// WithBackfillPageSize sets how many ids are read per store page.
func WithBackfillPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.backfillPageSize = n
		}
	}
}

// WithDedupeSize bounds the recompute job deduper.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithMaxPageLimit caps listing page sizes.
func WithMaxPageLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageLimit = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets how new athlete ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

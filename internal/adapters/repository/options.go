package repository

import "time"

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets how often the athlete count gauge is refreshed.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithPriorities sets the source of treap priorities. Tests use it for
// reproducible tree shapes.
func WithPriorities(next func() uint64) Option {
	return func(s *MemoryStore) {
		if next != nil {
			s.prio = next
		}
	}
}

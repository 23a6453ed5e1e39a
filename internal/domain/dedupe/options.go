package dedupe

// Option configures the in-memory Deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered keys. Values <= 0 disable the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

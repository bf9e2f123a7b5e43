package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*settings)

type settings struct {
	maxSize int
}

// WithMaxSize sets the maximum number of keys kept in memory.
// If maxSize > 0 the oldest key is evicted once the bound is reached.
// If maxSize <= 0 keys are never evicted.
func WithMaxSize(maxSize int) Option {
	return func(s *settings) {
		s.maxSize = maxSize
	}
}

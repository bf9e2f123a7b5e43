package bridge

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Option applies a configuration option to the Bridge.
type Option func(*Bridge)

// WithView selects the board shape: leaderboard (default) or entry.
func WithView(view string) Option {
	return func(b *Bridge) {
		if view != "" {
			b.view = view
		}
	}
}

// WithLimit caps leaderboard rows. The entry view always shows every result.
func WithLimit(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithFilterByEvent skips result notifications for events the display does
// not track.
func WithFilterByEvent(on bool) Option {
	return func(b *Bridge) {
		b.filterByEvent = on
	}
}

// WithClock overrides the time stamped on boards.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

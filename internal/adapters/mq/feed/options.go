package feed

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

const (
	defaultBufferSize    = 16
	defaultChannelPrefix = "xc:"
	defaultPingInterval  = 90 * time.Second
)

// Option applies a configuration option to the feed drivers.
type Option func(*settings)

type settings struct {
	bufferSize    int
	channelPrefix string
	pingInterval  time.Duration
	now           func() time.Time
	logger        logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		bufferSize:    defaultBufferSize,
		channelPrefix: defaultChannelPrefix,
		pingInterval:  defaultPingInterval,
		now:           time.Now,
		logger:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithBufferSize sets the per-subscription buffer. Notifications beyond it
// are dropped.
func WithBufferSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.bufferSize = size
		}
	}
}

// WithChannelPrefix sets the Redis channel prefix.
func WithChannelPrefix(prefix string) Option {
	return func(s *settings) {
		s.channelPrefix = prefix
	}
}

// WithPingInterval sets how often the Postgres listener pings its connection.
func WithPingInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithClock overrides the time source stamped on changes.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the feed logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

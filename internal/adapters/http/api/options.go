package api

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Option configures the API server.
type Option func(*settings)

type settings struct {
	maxLimit       int
	filterByEvent  bool
	pingInterval   time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string
	logger         logger.Logger
}

func newSettings(opts []Option) *settings {
	s := &settings{
		maxLimit:       100,
		filterByEvent:  true,
		pingInterval:   30 * time.Second,
		writeTimeout:   10 * time.Second,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// WithMaxLimit caps ?limit on leaderboard reads.
func WithMaxLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithFilterByEvent is passed to every live display bridge.
func WithFilterByEvent(on bool) Option {
	return func(s *settings) { s.filterByEvent = on }
}

// WithPingInterval sets how often live sockets are pinged. A client that
// misses two pings is dropped.
func WithPingInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithWriteTimeout bounds each live socket write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithAllowedOrigins restricts websocket origins. "*" allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *settings) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

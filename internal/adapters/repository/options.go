package repository

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/google/uuid"
)

// Option applies a configuration option to the store drivers.
type Option func(*settings)

type settings struct {
	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

func defaultSettings() settings {
	return settings{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger.NewNop(),
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *settings) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

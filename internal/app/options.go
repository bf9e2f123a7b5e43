package service

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the event store. Defaults to a MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFeed sets the change feed. Defaults to a MemoryFeed.
func WithFeed(f feed.Feed) Option {
	return func(s *Service) {
		if f != nil {
			s.feed = f
		}
	}
}

// WithPublishOnWrite controls whether writes publish changes. Turn it off
// when the store already notifies, as the Postgres triggers do.
func WithPublishOnWrite(on bool) Option {
	return func(s *Service) {
		s.publishOnWrite = on
	}
}

// WithRejectWhenActive refuses CreateEvent while another event is active
// instead of superseding it.
func WithRejectWhenActive(on bool) Option {
	return func(s *Service) {
		s.rejectWhenActive = on
	}
}

// WithDedupeSize bounds the idempotency key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLeaderboardSize sets the default number of leaderboard rows.
func WithLeaderboardSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardSize = n
		}
	}
}

// WithStoreDriver records the store driver name for stats.
func WithStoreDriver(name string) Option {
	return func(s *Service) {
		s.storeDriver = name
	}
}

// WithFeedDriver records the feed driver name for stats.
func WithFeedDriver(name string) Option {
	return func(s *Service) {
		s.feedDriver = name
	}
}

// WithClock overrides the time source for boards and changes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

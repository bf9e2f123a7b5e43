// Package service ties the event store, change feed and leaderboard
// projection together behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/dedupe"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// Service implements the meet operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	feed    feed.Feed
	deduper dedupe.Deduper[submission]

	// Configuration
	publishOnWrite   bool
	rejectWhenActive bool
	dedupeSize       int
	leaderboardSize  int
	storeDriver      string
	feedDriver       string
	now              func() time.Time

	// State
	started   bool
	stopped   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service. Without options it runs fully in memory.
func New(opts ...Option) *Service {
	s := &Service{
		publishOnWrite:  true,
		dedupeSize:      10_000,
		leaderboardSize: 10,
		storeDriver:     "memory",
		feedDriver:      "memory",
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.feed == nil {
		s.feed = feed.NewMemoryFeed()
	}
	return s
}

// Start prepares the idempotency cache and marks the service ready. A
// stopped service has closed its store and feed and cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.deduper = dedupe.NewInMemoryDeduper[submission](dedupe.WithMaxSize(s.dedupeSize))
	s.started = true
	s.startedAt = s.now()

	s.logger.Info(ctx, "results service started",
		logger.String("store", s.storeDriver),
		logger.String("feed", s.feedDriver),
		logger.Bool("publishOnWrite", s.publishOnWrite),
		logger.Bool("rejectWhenActive", s.rejectWhenActive),
		logger.Int("leaderboardSize", s.leaderboardSize),
	)
	return nil
}

// Stop closes the feed and the store. Open live subscriptions end and the
// service is not restartable.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping results service...")

	if err := s.feed.Close(); err != nil {
		s.logger.Warn(ctx, "closing feed", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "results service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Subscribe hands out change subscriptions for live displays.
func (s *Service) Subscribe(ctx context.Context, collection string) (*feed.Subscription, error) {
	return s.feed.Subscribe(ctx, collection)
}

// LeaderboardSize is the default number of leaderboard rows.
func (s *Service) LeaderboardSize() int { return s.leaderboardSize }

// publish announces a change after a successful write. Failures are logged:
// the write already happened and displays catch up on the next change.
func (s *Service) publish(ctx context.Context, collection, op, id, eventID string) {
	if !s.publishOnWrite {
		return
	}
	err := s.feed.Publish(ctx, feed.Change{
		Collection: collection,
		Op:         op,
		ID:         id,
		EventID:    eventID,
		At:         s.now().UTC(),
	})
	if err != nil && !errors.Is(err, feed.ErrClosed) {
		s.logger.Warn(ctx, "publish change failed",
			logger.String("collection", collection),
			logger.String("op", op),
			logger.String("id", id),
			logger.Error(err),
		)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	started, startedAt := s.started, s.startedAt
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         started,
		"store":           s.storeDriver,
		"feed":            s.feedDriver,
		"leaderboardSize": s.leaderboardSize,
		"dedupeSize":      s.dedupeSize,
	}
	if !started {
		return stats
	}

	stats["uptimeSeconds"] = int64(s.now().Sub(startedAt).Seconds())
	stats["dedupeEntries"] = s.deduper.Size()

	if ev, ok, err := s.ActiveEvent(ctx); err == nil {
		stats["activeEvent"] = nil
		if ok {
			stats["activeEvent"] = ev.Name
			if rs, err := s.store.ListResults(ctx, ev.ID); err == nil {
				stats["activeResults"] = len(rs)
			}
		}
	}
	if events, err := s.store.ListEvents(ctx); err == nil {
		stats["events"] = len(events)
	}
	return stats
}

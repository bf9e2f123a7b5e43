// Package bridge keeps one live display in sync with the store.
//
// A display subscribes to the events and results collections, fetches its
// state once, then refetches and pushes a new board whenever a relevant
// notification arrives. Cancelling the context tears both subscriptions down.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

const defaultLimit = 10

// Source reads the state a display renders.
type Source interface {
	ActiveEvent(ctx context.Context) (model.Event, bool, error)
	Results(ctx context.Context, eventID string) ([]model.Result, error)
}

// Subscriber hands out change subscriptions.
type Subscriber interface {
	Subscribe(ctx context.Context, collection string) (*feed.Subscription, error)
}

// Sink receives every board the display should show.
type Sink func(ctx context.Context, b types.Board) error

// Bridge drives one display.
type Bridge struct {
	source        Source
	feed          Subscriber
	view          string
	limit         int
	filterByEvent bool
	now           func() time.Time
	logger        logger.Logger

	event   *model.Event
	results []model.Result
}

// New creates a bridge for one display.
func New(source Source, sub Subscriber, opts ...Option) *Bridge {
	b := &Bridge{
		source:        source,
		feed:          sub,
		view:          leaderboard.ViewLeaderboard,
		limit:         defaultLimit,
		filterByEvent: true,
		now:           time.Now,
		logger:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.String("view", b.view))
	return b
}

// ValidView reports whether view names a board shape.
func ValidView(view string) bool {
	return view == leaderboard.ViewLeaderboard || view == leaderboard.ViewEntry
}

// Run pushes an initial board then one per relevant change until ctx is
// cancelled, the feed closes or sink fails. It returns nil on cancellation.
func (b *Bridge) Run(ctx context.Context, sink Sink) error {
	if !ValidView(b.view) {
		return fmt.Errorf("%w: %q", ErrUnknownView, b.view)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := b.feed.Subscribe(ctx, feed.CollectionEvents)
	if err != nil {
		return fmt.Errorf("subscribe events: %w", err)
	}
	defer events.Unsubscribe()
	results, err := b.feed.Subscribe(ctx, feed.CollectionResults)
	if err != nil {
		return fmt.Errorf("subscribe results: %w", err)
	}
	defer results.Unsubscribe()

	metrics.AddLiveDisplay(b.view, 1)
	defer metrics.AddLiveDisplay(b.view, -1)
	b.logger.Debug(ctx, "live display attached")
	defer b.logger.Debug(ctx, "live display detached")

	if err := sink(ctx, b.refreshAll(ctx)); err != nil {
		return err
	}

	for {
		var (
			board types.Board
			push  bool
		)
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-events.C():
			if !ok {
				return b.closed(ctx)
			}
			board, push = b.onEventChange(ctx, c)
		case c, ok := <-results.C():
			if !ok {
				return b.closed(ctx)
			}
			board, push = b.onResultChange(ctx, c)
		}
		if !push {
			continue
		}
		metrics.RecordBoardRefresh(b.view)
		if err := sink(ctx, board); err != nil {
			return err
		}
	}
}

func (b *Bridge) closed(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}
	return ErrFeedClosed
}

// onEventChange refetches the active event and, when it changed, its results.
func (b *Bridge) onEventChange(ctx context.Context, _ feed.Change) (types.Board, bool) {
	prev := b.event
	if err := b.fetchEvent(ctx); err != nil {
		return b.failed(ctx, err), true
	}
	if sameEvent(prev, b.event) {
		return b.board(), true
	}
	if err := b.fetchResults(ctx); err != nil {
		return b.failed(ctx, err), true
	}
	return b.board(), true
}

// onResultChange refetches results of the tracked event.
func (b *Bridge) onResultChange(ctx context.Context, c feed.Change) (types.Board, bool) {
	if b.event == nil {
		return types.Board{}, false
	}
	if b.filterByEvent && c.Op != feed.OpResync && c.EventID != "" && c.EventID != b.event.ID {
		return types.Board{}, false
	}
	if err := b.fetchResults(ctx); err != nil {
		return b.failed(ctx, err), true
	}
	return b.board(), true
}

func (b *Bridge) refreshAll(ctx context.Context) types.Board {
	if err := b.fetchEvent(ctx); err != nil {
		return b.failed(ctx, err)
	}
	if err := b.fetchResults(ctx); err != nil {
		return b.failed(ctx, err)
	}
	return b.board()
}

func (b *Bridge) fetchEvent(ctx context.Context) error {
	ev, ok, err := b.source.ActiveEvent(ctx)
	if err != nil {
		return fmt.Errorf("fetch active event: %w", err)
	}
	if !ok {
		b.event = nil
		return nil
	}
	b.event = &ev
	return nil
}

func (b *Bridge) fetchResults(ctx context.Context) error {
	if b.event == nil {
		b.results = nil
		return nil
	}
	rs, err := b.source.Results(ctx, b.event.ID)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}
	b.results = rs
	return nil
}

func (b *Bridge) board() types.Board {
	limit := b.limit
	if b.view == leaderboard.ViewEntry {
		limit = 0
	}
	return leaderboard.BuildBoard(b.view, b.event, b.results, limit, b.now())
}

func (b *Bridge) failed(ctx context.Context, err error) types.Board {
	b.logger.Error(ctx, "live refresh failed", logger.Error(err))
	return leaderboard.FailedBoard(b.view, b.now())
}

func sameEvent(a, b *model.Event) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	}
	return a.ID == b.ID
}

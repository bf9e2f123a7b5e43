package feed

import (
	"context"
	"sync/atomic"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// MemoryFeed delivers changes within the process.
type MemoryFeed struct {
	settings
	hub    *hub
	closed atomic.Bool
}

var _ Feed = (*MemoryFeed)(nil)

// NewMemoryFeed creates an in-process feed.
func NewMemoryFeed(opts ...Option) *MemoryFeed {
	s := newSettings(opts)
	return &MemoryFeed{settings: s, hub: newHub(s.bufferSize)}
}

func (f *MemoryFeed) Publish(_ context.Context, c Change) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if err := validCollection(c.Collection); err != nil {
		return err
	}
	if c.At.IsZero() {
		c.At = f.now().UTC()
	}
	f.hub.deliver(c)
	metrics.RecordFeedPublished(c.Collection)
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	return f.hub.subscribe(ctx, collection)
}

// Subscribers reports the open subscriptions on collection.
func (f *MemoryFeed) Subscribers(collection string) int {
	return f.hub.count(collection)
}

func (f *MemoryFeed) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.hub.close()
	return nil
}

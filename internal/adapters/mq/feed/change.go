// Package feed carries change notifications keyed by collection.
//
// A notification says only that something changed; subscribers refetch the
// state they display. Every driver fans notifications out to local
// subscribers through the same hub, so a slow subscriber drops
// notifications instead of blocking publishers.
package feed

import (
	"context"
	"fmt"
	"time"
)

// Collections that publish changes.
const (
	CollectionEvents  = "events"
	CollectionResults = "results"
)

// Change operations. OpResync asks subscribers to refetch after a gap in
// delivery, e.g. a dropped database connection.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpResync = "resync"
)

// Change is one row-level notification.
type Change struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	At         time.Time `json:"at"`
}

// Feed publishes changes and hands out subscriptions per collection.
type Feed interface {
	Publish(ctx context.Context, c Change) error

	// Subscribe registers for changes on collection. The subscription ends
	// when ctx is cancelled or Unsubscribe is called.
	Subscribe(ctx context.Context, collection string) (*Subscription, error)

	Close() error
}

// Collections lists every collection a feed carries.
func Collections() []string {
	return []string{CollectionEvents, CollectionResults}
}

func validCollection(collection string) error {
	switch collection {
	case CollectionEvents, CollectionResults:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
}

// Package repository defines the event store interface and its drivers.
package repository

import (
	"context"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

// Store persists events and results. Drivers assign IDs and creation times.
type Store interface {
	// ListEvents returns every event, newest first.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// ActiveEvent returns the active event or ErrNotFound.
	ActiveEvent(ctx context.Context) (model.Event, error)

	// GetEvent returns one event or ErrNotFound.
	GetEvent(ctx context.Context, id string) (model.Event, error)

	// InsertEvent stores a new event. Inserting an active event while another
	// is active fails with ErrConflict.
	InsertEvent(ctx context.Context, e model.Event) (model.Event, error)

	// DeactivateAll clears the active flag everywhere and returns the IDs it changed.
	DeactivateAll(ctx context.Context) ([]string, error)

	// DeactivateEvent clears the active flag on one event. Unknown IDs fail
	// with ErrNotFound; an already inactive event is left as is.
	DeactivateEvent(ctx context.Context, id string) error

	// InsertResult stores a result. An unknown event fails with ErrNotFound.
	InsertResult(ctx context.Context, r model.Result) (model.Result, error)

	// DeleteResult removes a result and reports whether a row was removed.
	DeleteResult(ctx context.Context, id string) (model.Result, bool, error)

	// ListResults returns an event's results in insertion order.
	ListResults(ctx context.Context, eventID string) ([]model.Result, error)

	Close() error
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// ListEvents returns every event, newest first.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ActiveEvent returns the active event. ok is false when none is active.
// It is read from the store on every call.
func (s *Service) ActiveEvent(ctx context.Context) (model.Event, bool, error) {
	ev, err := s.store.ActiveEvent(ctx)
	switch {
	case err == nil:
		return ev, true, nil
	case errors.Is(err, repository.ErrNotFound):
		return model.Event{}, false, nil
	}
	return model.Event{}, false, fmt.Errorf("active event: %w", err)
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, id string) (model.Event, error) {
	ev, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// CreateEvent starts a new event named "{division} {age group} {distance}"
// and makes it the only active one. Any previously active event is ended
// first unless the service rejects creation while an event is active.
//
// Deactivate and insert are two store calls. Concurrent creators can race
// between them; stores that enforce a single active event turn the loser's
// insert into repository.ErrConflict.
func (s *Service) CreateEvent(ctx context.Context, division, distance, ageGroup string) (model.Event, error) {
	if err := s.ready(); err != nil {
		return model.Event{}, err
	}

	d, err := model.ParseDivision(division)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	dist, err := model.ParseDistance(distance)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	age, err := model.ParseAgeGroup(ageGroup)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if s.rejectWhenActive {
		cur, ok, err := s.ActiveEvent(ctx)
		if err != nil {
			return model.Event{}, err
		}
		if ok {
			return model.Event{}, fmt.Errorf("%w: %s", ErrActiveEvent, cur.Name)
		}
	}

	ended, err := s.store.DeactivateAll(ctx)
	if err != nil {
		return model.Event{}, fmt.Errorf("deactivate events: %w", err)
	}
	for _, id := range ended {
		s.publish(ctx, feed.CollectionEvents, feed.OpUpdate, id, id)
	}

	ev, err := s.store.InsertEvent(ctx, model.Event{
		Name:   model.EventName(d, age, dist),
		Active: true,
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}
	s.publish(ctx, feed.CollectionEvents, feed.OpInsert, ev.ID, ev.ID)
	metrics.RecordEventCreated()

	s.logger.Info(ctx, "event created",
		logger.String("eventID", ev.ID),
		logger.String("name", ev.Name),
		logger.Int("superseded", len(ended)),
	)
	return ev, nil
}

// EndEvent marks an event inactive. It does nothing when no event is active
// or the event has already ended.
func (s *Service) EndEvent(ctx context.Context, eventID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, ok, err := s.ActiveEvent(ctx); err != nil || !ok {
		return err
	}
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !ev.Active {
		return nil
	}

	if err := s.store.DeactivateEvent(ctx, eventID); err != nil {
		return fmt.Errorf("end event: %w", err)
	}
	s.publish(ctx, feed.CollectionEvents, feed.OpUpdate, eventID, eventID)
	metrics.RecordEventEnded()

	s.logger.Info(ctx, "event ended", logger.String("eventID", eventID), logger.String("name", ev.Name))
	return nil
}

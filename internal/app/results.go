package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// validateInput returns the result to store or an error wrapping ErrValidation
// and the precise cause.
func validateInput(in types.ResultInput) (model.Result, string, error) {
	if strings.TrimSpace(in.EventID) == "" {
		return model.Result{}, "missing_event", fmt.Errorf("%w: %w", ErrValidation, model.ErrMissingEvent)
	}
	name := strings.TrimSpace(in.RunnerName)
	if name == "" {
		return model.Result{}, "missing_runner", fmt.Errorf("%w: %w", ErrValidation, model.ErrMissingRunner)
	}
	house, err := model.ParseHouse(in.House)
	if err != nil {
		return model.Result{}, "invalid_house", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	ft, err := model.ParseFinishTimeFields(in.Minutes, in.Seconds, in.Hundredths)
	if err != nil {
		return model.Result{}, "invalid_time", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return model.Result{
		EventID:    strings.TrimSpace(in.EventID),
		RunnerName: name,
		House:      house,
		Time:       ft.String(),
	}, "", nil
}

// submission is what an idempotency key was first used for.
type submission struct {
	resultID    string
	fingerprint string
}

// fingerprint identifies the submitted fields of a validated result.
func fingerprint(r model.Result) string {
	return strings.Join([]string{strings.ToLower(r.RunnerName), string(r.House), r.Time}, "\x00")
}

// AddResult records a runner's finish for an active event. Duplicate
// runner names are allowed. Idempotency keys are scoped to the event: a
// repeated key with the same fields is acknowledged without storing a second
// row, and a repeated key with different fields is rejected with ErrKeyReused.
func (s *Service) AddResult(ctx context.Context, in types.ResultInput) error {
	if err := s.ready(); err != nil {
		return err
	}

	r, reason, err := validateInput(in)
	if err != nil {
		metrics.RecordResultRejected(reason)
		return err
	}

	ev, err := s.GetEvent(ctx, r.EventID)
	if err != nil {
		metrics.RecordResultRejected("unknown_event")
		return err
	}
	if !ev.Active {
		metrics.RecordResultRejected("event_not_active")
		return fmt.Errorf("%w: %s", ErrEventNotActive, ev.Name)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		key = r.EventID + "/" + key
		if s.deduper.SeenAndRecord(ctx, key) {
			prev, ok := s.deduper.Lookup(ctx, key)
			if !ok {
				return ErrSubmissionInFlight
			}
			if prev.fingerprint != fingerprint(r) {
				metrics.RecordResultRejected("key_reused")
				return fmt.Errorf("%w: %s", ErrKeyReused, strings.TrimSpace(in.IdempotencyKey))
			}
			metrics.RecordDuplicateSubmission()
			s.logger.Debug(ctx, "duplicate submission acknowledged",
				logger.String("key", key), logger.String("resultID", prev.resultID))
			return nil
		}
	}

	stored, err := s.store.InsertResult(ctx, r)
	if err != nil {
		if key != "" {
			s.deduper.Unrecord(ctx, key)
		}
		return fmt.Errorf("insert result: %w", err)
	}
	if key != "" {
		s.deduper.Complete(ctx, key, submission{resultID: stored.ID, fingerprint: fingerprint(r)})
	}

	s.publish(ctx, feed.CollectionResults, feed.OpInsert, stored.ID, stored.EventID)
	metrics.RecordResult(string(stored.House))

	s.logger.Debug(ctx, "result recorded",
		logger.String("resultID", stored.ID),
		logger.String("eventID", stored.EventID),
		logger.String("house", string(stored.House)),
		logger.String("time", stored.Time),
	)
	return nil
}

// DeleteResult removes a result. Removing one that does not exist is not
// an error.
func (s *Service) DeleteResult(ctx context.Context, resultID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(resultID) == "" {
		return fmt.Errorf("%w: missing result id", ErrValidation)
	}

	removed, ok, err := s.store.DeleteResult(ctx, resultID)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	if !ok {
		return nil
	}
	s.publish(ctx, feed.CollectionResults, feed.OpDelete, removed.ID, removed.EventID)
	metrics.RecordResultDeleted()
	return nil
}

// Results returns an event's raw results in insertion order.
func (s *Service) Results(ctx context.Context, eventID string) ([]model.Result, error) {
	rs, err := s.store.ListResults(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return rs, nil
}

package service

import "errors"

// Sentinel kinds for service errors. Store errors pass through wrapped, so
// callers also match repository.ErrNotFound and repository.ErrConflict.
var (
	ErrValidation         = errors.New("validation failed")
	ErrActiveEvent        = errors.New("an event is already active")
	ErrEventNotActive     = errors.New("event is not active")
	ErrSubmissionInFlight = errors.New("submission with this idempotency key is in progress")
	ErrNotStarted         = errors.New("service not started")
	ErrStopped            = errors.New("service stopped")
	ErrKeyReused          = errors.New("idempotency key reused with a different result")
)

package model

import "errors"

// Sentinel kinds for domain validation errors.
var (
	ErrInvalidDivision = errors.New("invalid division")
	ErrInvalidDistance = errors.New("invalid distance")
	ErrInvalidAgeGroup = errors.New("invalid age group")
	ErrInvalidHouse    = errors.New("invalid house")
	ErrInvalidTime     = errors.New("invalid finish time")
	ErrMissingRunner   = errors.New("missing runner name")
	ErrMissingEvent    = errors.New("missing event id")
)

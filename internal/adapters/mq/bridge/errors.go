package bridge

import "errors"

// Sentinel kinds for bridge errors.
var (
	ErrFeedClosed  = errors.New("change feed closed")
	ErrUnknownView = errors.New("unknown view")
)

package repository

import (
	"errors"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// observe records latency for op and counts failures other than the
// expected not found and conflict outcomes.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
		metrics.RecordStoreError(op)
	}
}

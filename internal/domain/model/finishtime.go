package model

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	maxSeconds    = 59
	maxHundredths = 99
)

// FinishTime is an elapsed race time with hundredth-of-a-second precision.
type FinishTime struct {
	Minutes    int
	Seconds    int
	Hundredths int
}

// NewFinishTime validates the components; out of range values are rejected,
// never clamped.
func NewFinishTime(minutes, seconds, hundredths int) (FinishTime, error) {
	switch {
	case minutes < 0:
		return FinishTime{}, fmt.Errorf("%w: minutes must not be negative", ErrInvalidTime)
	case seconds < 0 || seconds > maxSeconds:
		return FinishTime{}, fmt.Errorf("%w: seconds must be between 0 and 59", ErrInvalidTime)
	case hundredths < 0 || hundredths > maxHundredths:
		return FinishTime{}, fmt.Errorf("%w: milliseconds must be between 0 and 99", ErrInvalidTime)
	}
	return FinishTime{Minutes: minutes, Seconds: seconds, Hundredths: hundredths}, nil
}

// ParseFinishTimeFields builds a FinishTime from free-typed form fields.
// Blank fields count as zero.
func ParseFinishTimeFields(minutes, seconds, hundredths string) (FinishTime, error) {
	m, err := parseField("minutes", minutes)
	if err != nil {
		return FinishTime{}, err
	}
	s, err := parseField("seconds", seconds)
	if err != nil {
		return FinishTime{}, err
	}
	h, err := parseField("milliseconds", hundredths)
	if err != nil {
		return FinishTime{}, err
	}
	return NewFinishTime(m, s, h)
}

func parseField(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s %q is not a whole number", ErrInvalidTime, name, raw)
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidTime, name, raw, err)
	}
	return n, nil
}

// ParseFinishTime parses the stored MM:SS.hh form. A leading hours section
// (HH:MM:SS.hh) is dropped, matching how displays strip it.
func ParseFinishTime(s string) (FinishTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 3 {
		parts = parts[1:]
	}
	if len(parts) != 2 {
		return FinishTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	secs, hund, ok := strings.Cut(parts[1], ".")
	if !ok || len(secs) != 2 || len(hund) != 2 || len(parts[0]) < 2 {
		return FinishTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ParseFinishTimeFields(parts[0], secs, hund)
}

// String formats as MM:SS.hh with every field padded to two digits.
func (f FinishTime) String() string {
	return fmt.Sprintf("%02d:%02d.%02d", f.Minutes, f.Seconds, f.Hundredths)
}

// Duration converts to a time.Duration.
func (f FinishTime) Duration() time.Duration {
	return time.Duration(f.Minutes)*time.Minute +
		time.Duration(f.Seconds)*time.Second +
		time.Duration(f.Hundredths)*10*time.Millisecond
}

// Compare returns -1, 0 or +1 comparing elapsed time numerically.
func (f FinishTime) Compare(o FinishTime) int {
	if c := cmp.Compare(f.Minutes, o.Minutes); c != 0 {
		return c
	}
	if c := cmp.Compare(f.Seconds, o.Seconds); c != 0 {
		return c
	}
	return cmp.Compare(f.Hundredths, o.Hundredths)
}

// Less reports whether f is strictly faster than o.
func (f FinishTime) Less(o FinishTime) bool { return f.Compare(o) < 0 }


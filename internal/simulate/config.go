// Package simulate drives a running results service through a whole race:
// it starts an event, posts finishes from concurrent timing desks and
// checks the published leaderboard against the finishes it sent.
package simulate

import (
	"errors"
	"time"
)

// ErrMismatch is returned when the leaderboard disagrees with the posted finishes.
var ErrMismatch = errors.New("leaderboard mismatch")

// Config holds configuration for a simulated race.
type Config struct {
	BaseURL  string        // Base URL of the service
	Division string        // Event division, e.g. Boys
	Distance string        // Event distance, e.g. 3km
	AgeGroup string        // Age group, e.g. 14 or Open
	Runners  int           // Number of finishes to post
	Workers  int           // Concurrent timing desks
	Pace     time.Duration // Pause between finishes per desk
	Timeout  time.Duration // HTTP request timeout
	Top      int           // Leaderboard rows to verify
	Seed     uint64        // Seed for names, houses and times
	EndEvent bool          // End the event after verifying
}

// Stats holds run statistics.
type Stats struct {
	EventID      string
	EventName    string
	Generated    int
	Submitted    int
	Successful   int
	Failed       int
	BoardRows    int
	BoardTotal   int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	PostsPerSecs float64
}

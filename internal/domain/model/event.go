// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Event is a single race of the meet. At most one event is active.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// EventName composes the display name "{Division} {AgeGroup} {Distance}".
func EventName(division Division, ageGroup AgeGroup, distance Distance) string {
	return string(division) + " " + ageGroup.Label() + " " + string(distance)
}

// Result is one runner's recorded finish in an event. Results are never
// updated in place.
type Result struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	RunnerName string    `json:"runner_name"`
	House      House     `json:"house"`
	Time       string    `json:"time"`
	CreatedAt  time.Time `json:"created_at"`
}

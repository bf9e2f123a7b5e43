// Package types contains the view shapes shared by the HTTP and live layers.
package types

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

// Palette is a house's display colour triple plus a tinted background.
type Palette struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
	Border     string `json:"border"`
	Tint       string `json:"tint"`
}

// Row is one ranked result as displayed.
type Row struct {
	Rank       int         `json:"rank"`
	ID         string      `json:"id"`
	RunnerName string      `json:"runner_name"`
	House      model.House `json:"house"`
	Time       string      `json:"time"`
	Podium     bool        `json:"podium"`
	Medal      string      `json:"medal,omitempty"`
	Colors     Palette     `json:"colors"`
}

// Board is what a display renders for one event.
type Board struct {
	View        string       `json:"view"`
	Event       *model.Event `json:"event"`
	Rows        []Row        `json:"rows"`
	Podium      []Row        `json:"podium"`
	Remaining   []Row        `json:"remaining"`
	Total       int          `json:"total"`
	Empty       bool         `json:"empty"`
	Message     string       `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ResultInput is a finish as typed into the entry form. Time fields are
// free text; blanks count as zero.
type ResultInput struct {
	EventID    string
	RunnerName string
	House      string
	Minutes    string
	Seconds    string
	Hundredths string

	// IdempotencyKey makes resubmission of the same form a no-op.
	IdempotencyKey string
}

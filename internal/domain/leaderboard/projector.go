// Package leaderboard derives ranked views from raw results.
package leaderboard

import (
	"slices"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
)

// PodiumSize is the number of ranks shown with podium styling.
const PodiumSize = 3

// Standing is a result with its 1-based rank.
type Standing struct {
	Rank   int
	Result model.Result
	Time   model.FinishTime
	// Valid is false when the stored time could not be parsed; such rows
	// rank after every valid time.
	Valid bool
}

// Projection is the ranked order split into podium and remaining.
type Projection struct {
	Podium    []Standing
	Remaining []Standing
}

// All returns podium followed by remaining.
func (p Projection) All() []Standing {
	out := make([]Standing, 0, len(p.Podium)+len(p.Remaining))
	out = append(out, p.Podium...)
	return append(out, p.Remaining...)
}

// Len is the number of ranked results.
func (p Projection) Len() int { return len(p.Podium) + len(p.Remaining) }

// Project sorts results ascending by elapsed time. The sort is stable, so
// equal times keep the order they were given in.
func Project(results []model.Result) Projection {
	standings := rank(results)
	cut := min(PodiumSize, len(standings))
	return Projection{
		Podium:    standings[:cut:cut],
		Remaining: standings[cut:],
	}
}

// TopN returns the first n standings of the projected order.
func TopN(results []model.Result, n int) []Standing {
	if n <= 0 {
		return []Standing{}
	}
	standings := rank(results)
	return standings[:min(n, len(standings))]
}

func rank(results []model.Result) []Standing {
	standings := make([]Standing, len(results))
	for i, r := range results {
		ft, err := model.ParseFinishTime(r.Time)
		standings[i] = Standing{Result: r, Time: ft, Valid: err == nil}
	}
	slices.SortStableFunc(standings, func(a, b Standing) int {
		switch {
		case a.Valid && !b.Valid:
			return -1
		case !a.Valid && b.Valid:
			return 1
		case !a.Valid:
			return 0
		}
		return a.Time.Compare(b.Time)
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

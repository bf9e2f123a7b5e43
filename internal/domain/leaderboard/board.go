package leaderboard

import (
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

// Display messages for empty boards.
const (
	MsgNoActiveEvent = "No active event found. Please create a new event."
	MsgNoResults     = "No results yet"
	MsgFetchFailed   = "Failed to fetch data. Please try again later."
)

// Views a board can be built for.
const (
	ViewLeaderboard = "leaderboard"
	ViewEntry       = "entry"
)

// BuildBoard renders the board for event. limit caps the rows; limit <= 0
// keeps every result. A nil event yields the explicit no-event board.
func BuildBoard(view string, event *model.Event, results []model.Result, limit int, now time.Time) types.Board {
	b := types.Board{
		View:        view,
		Event:       event,
		Rows:        []types.Row{},
		Podium:      []types.Row{},
		Remaining:   []types.Row{},
		GeneratedAt: now.UTC(),
	}
	if event == nil {
		b.Empty = true
		b.Message = MsgNoActiveEvent
		return b
	}

	var standings []Standing
	if limit > 0 {
		standings = TopN(results, limit)
	} else {
		standings = Project(results).All()
	}
	b.Total = len(results)
	if len(standings) == 0 {
		b.Empty = true
		b.Message = MsgNoResults
		return b
	}

	for _, s := range standings {
		row := toRow(s)
		b.Rows = append(b.Rows, row)
		if row.Podium {
			b.Podium = append(b.Podium, row)
		} else {
			b.Remaining = append(b.Remaining, row)
		}
	}
	return b
}

// FailedBoard is shown when the data behind a board could not be read.
func FailedBoard(view string, now time.Time) types.Board {
	return types.Board{
		View:        view,
		Rows:        []types.Row{},
		Podium:      []types.Row{},
		Remaining:   []types.Row{},
		Empty:       true,
		Error:       MsgFetchFailed,
		GeneratedAt: now.UTC(),
	}
}

func toRow(s Standing) types.Row {
	t := s.Result.Time
	if s.Valid {
		t = s.Time.String()
	}
	return types.Row{
		Rank:       s.Rank,
		ID:         s.Result.ID,
		RunnerName: s.Result.RunnerName,
		House:      s.Result.House,
		Time:       t,
		Podium:     s.Rank <= PodiumSize,
		Medal:      Medal(s.Rank),
		Colors:     HouseColors(s.Result.House),
	}
}

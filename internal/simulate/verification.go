package simulate

import (
	"context"
	"fmt"
	"slices"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// verifyBoard checks the board tracks eventID, counts every accepted
// finish and lists the fastest top times in order. Runners with equal
// times may appear in either order because desks post concurrently.
func verifyBoard(eventID string, accepted []Finish, board types.Board, top int) error {
	if board.Event == nil || board.Event.ID != eventID {
		return fmt.Errorf("%w: board is not tracking event %s", ErrMismatch, eventID)
	}
	if board.Total != len(accepted) {
		return fmt.Errorf("%w: board counts %d results, %d were accepted", ErrMismatch, board.Total, len(accepted))
	}

	want := make([]string, 0, len(accepted))
	for _, f := range accepted {
		want = append(want, f.Time().String())
	}
	slices.Sort(want)
	if len(want) > top {
		want = want[:top]
	}

	if len(board.Rows) != len(want) {
		return fmt.Errorf("%w: board shows %d rows, want %d", ErrMismatch, len(board.Rows), len(want))
	}
	for i, row := range board.Rows {
		if row.Rank != i+1 {
			return fmt.Errorf("%w: row %d has rank %d", ErrMismatch, i, row.Rank)
		}
		if row.Time != want[i] {
			return fmt.Errorf("%w: rank %d shows %s, want %s", ErrMismatch, row.Rank, row.Time, want[i])
		}
	}
	return nil
}

func displayPodium(ctx context.Context, log logger.Logger, board types.Board) {
	for _, row := range board.Podium {
		log.Info(ctx, "podium",
			logger.Int("rank", row.Rank),
			logger.String("medal", row.Medal),
			logger.String("runner", row.RunnerName),
			logger.String("house", string(row.House)),
			logger.String("time", row.Time))
	}
}

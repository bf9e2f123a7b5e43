package service

import (
	"context"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

// Board projects the active event for a display. limit <= 0 uses the
// configured leaderboard size; the entry view lists every result.
func (s *Service) Board(ctx context.Context, view string, limit int) (types.Board, error) {
	if limit <= 0 {
		limit = s.leaderboardSize
	}
	if view == leaderboard.ViewEntry {
		limit = 0
	}

	ev, ok, err := s.ActiveEvent(ctx)
	if err != nil {
		return types.Board{}, err
	}
	if !ok {
		return leaderboard.BuildBoard(view, nil, nil, limit, s.now()), nil
	}
	rs, err := s.Results(ctx, ev.ID)
	if err != nil {
		return types.Board{}, err
	}
	return leaderboard.BuildBoard(view, &ev, rs, limit, s.now()), nil
}

// EventBoard projects every result of one event, active or not.
func (s *Service) EventBoard(ctx context.Context, eventID string) (types.Board, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return types.Board{}, err
	}
	rs, err := s.Results(ctx, ev.ID)
	if err != nil {
		return types.Board{}, err
	}
	return leaderboard.BuildBoard(leaderboard.ViewEntry, &ev, rs, 0, s.now()), nil
}

package api

import (
	"fmt"
	"net/http"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/bridge"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// LeaderboardHandler handles board snapshot requests.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
	logger   logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int, log logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, maxLimit: maxLimit, logger: log}
}

// HandleGetLeaderboard handles GET /api/leaderboard?view=&limit=.
// The board for the active event is returned; without one the board is
// empty and carries the no-event message.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r.URL.Query().Get("view"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), h.deps.LeaderboardSize(), h.maxLimit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	board, err := h.deps.Board(r.Context(), view, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func parseView(raw string) (string, error) {
	if raw == "" {
		return leaderboard.ViewLeaderboard, nil
	}
	if !bridge.ValidView(raw) {
		return "", fmt.Errorf("%w: unknown view %q", ErrBadRequest, raw)
	}
	return raw, nil
}

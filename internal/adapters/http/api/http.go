// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/bridge"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	service "github.com/William-Laverty/CGS-CrossCountry/internal/app"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// bridge.Source and bridge.Subscriber feed the live displays.
	bridge.Source
	bridge.Subscriber

	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	CreateEvent(ctx context.Context, division, distance, ageGroup string) (model.Event, error)
	EndEvent(ctx context.Context, id string) error

	AddResult(ctx context.Context, in types.ResultInput) error
	DeleteResult(ctx context.Context, id string) error

	Board(ctx context.Context, view string, limit int) (types.Board, error)
	EventBoard(ctx context.Context, eventID string) (types.Board, error)
	LeaderboardSize() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	optionsHandler     *OptionsHandler
	eventsHandler      *EventsHandler
	resultsHandler     *ResultsHandler
	leaderboardHandler *LeaderboardHandler
	exportHandler      *ExportHandler
	liveHandler        *LiveHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := newSettings(opts)
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		optionsHandler:     NewOptionsHandler(deps),
		eventsHandler:      NewEventsHandler(deps, s.logger),
		resultsHandler:     NewResultsHandler(deps, s.logger),
		leaderboardHandler: NewLeaderboardHandler(deps, s.maxLimit, s.logger),
		exportHandler:      NewExportHandler(deps, s.logger),
		liveHandler:        NewLiveHandler(deps, s),
	}
}

// Register attaches all HTTP routes to mux. Live connections are closed
// when ctx is cancelled.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	if ctx != nil {
		s.liveHandler.base = ctx
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /api/options", MetricsMiddleware(s.optionsHandler.HandleOptions, "options"))

	mux.HandleFunc("GET /api/events", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events"))
	mux.HandleFunc("POST /api/events", MetricsMiddleware(s.eventsHandler.HandleCreateEvent, "events"))
	mux.HandleFunc("GET /api/events/active", MetricsMiddleware(s.eventsHandler.HandleActiveEvent, "active_event"))
	mux.HandleFunc("GET /api/events/{id}", MetricsMiddleware(s.eventsHandler.HandleGetEvent, "event"))
	mux.HandleFunc("POST /api/events/{id}/end", MetricsMiddleware(s.eventsHandler.HandleEndEvent, "end_event"))
	mux.HandleFunc("GET /api/events/{id}/results", MetricsMiddleware(s.resultsHandler.HandleEventResults, "event_results"))
	mux.HandleFunc("GET /api/events/{id}/export.xlsx", MetricsMiddleware(s.exportHandler.HandleExport, "export"))

	mux.HandleFunc("POST /api/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
	mux.HandleFunc("DELETE /api/results/{id}", MetricsMiddleware(s.resultsHandler.HandleDeleteResult, "results"))

	mux.HandleFunc("GET /api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /ws/live", MetricsMiddleware(s.liveHandler.HandleLive, "live"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service and store errors onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadLimit):
		return http.StatusBadRequest, "invalid_limit"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrActiveEvent):
		return http.StatusConflict, "active_event"
	case errors.Is(err, service.ErrEventNotActive):
		return http.StatusConflict, "event_not_active"
	case errors.Is(err, service.ErrKeyReused):
		return http.StatusUnprocessableEntity, "idempotency_key_reused"
	case errors.Is(err, service.ErrSubmissionInFlight), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError answers with the classified status. Server faults are
// logged and reported with the display message instead of the cause.
// Unavailability is reported as is.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeError(w, status, code, errors.New(leaderboard.MsgFetchFailed))
		return
	}
	writeError(w, status, code, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// parseLimit reads ?limit. Blank yields def; anything that is not a
// positive integer up to max is rejected.
func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", ErrBadLimit)
	}
	if max > 0 && n > max {
		return 0, fmt.Errorf("%w: limit must not exceed %d", ErrBadLimit, max)
	}
	return n, nil
}

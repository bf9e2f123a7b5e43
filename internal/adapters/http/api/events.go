package api

import (
	"net/http"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// createEventRequest mirrors the OpenAPI schema for POST /api/events.
type createEventRequest struct {
	Division string `json:"division"`
	Distance string `json:"distance"`
	AgeGroup string `json:"age_group"`
}

type eventsResponse struct {
	Events []model.Event `json:"events"`
}

// EventsHandler handles event lifecycle requests.
type EventsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, log logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, logger: log}
}

// HandleListEvents handles GET /api/events, newest first.
func (h *EventsHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := h.deps.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if evs == nil {
		evs = []model.Event{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: evs})
}

// HandleCreateEvent handles POST /api/events. The new event becomes the
// only active one.
func (h *EventsHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	ev, err := h.deps.CreateEvent(r.Context(), req.Division, req.Distance, req.AgeGroup)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info(r.Context(), "event created",
		logger.String("event_id", ev.ID),
		logger.String("name", ev.Name))
	writeJSON(w, http.StatusCreated, ev)
}

// HandleActiveEvent handles GET /api/events/active.
func (h *EventsHandler) HandleActiveEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok, err := h.deps.ActiveEvent(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "no_active_event", Message: leaderboard.MsgNoActiveEvent})
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleGetEvent handles GET /api/events/{id}.
func (h *EventsHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.deps.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleEndEvent handles POST /api/events/{id}/end. Ending an event that
// is already inactive succeeds.
func (h *EventsHandler) HandleEndEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.deps.EndEvent(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info(r.Context(), "event ended", logger.String("event_id", id))
	w.WriteHeader(http.StatusNoContent)
}

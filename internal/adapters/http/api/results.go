package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// idempotencyHeader carries the submission key when the body does not.
const idempotencyHeader = "Idempotency-Key"

// formField accepts a JSON string or number so form values can be posted
// as typed.
type formField string

func (f *formField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = formField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = formField(n.String())
	return nil
}

// resultRequest mirrors the OpenAPI schema for POST /api/results.
type resultRequest struct {
	EventID        string    `json:"event_id"`
	RunnerName     string    `json:"runner_name"`
	House          string    `json:"house"`
	Minutes        formField `json:"minutes"`
	Seconds        formField `json:"seconds"`
	Hundredths     formField `json:"hundredths"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func (req resultRequest) input(r *http.Request) types.ResultInput {
	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get(idempotencyHeader)
	}
	return types.ResultInput{
		EventID:        req.EventID,
		RunnerName:     req.RunnerName,
		House:          req.House,
		Minutes:        string(req.Minutes),
		Seconds:        string(req.Seconds),
		Hundredths:     string(req.Hundredths),
		IdempotencyKey: key,
	}
}

// ResultsHandler handles result entry requests.
type ResultsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps Dependencies, log logger.Logger) *ResultsHandler {
	return &ResultsHandler{deps: deps, logger: log}
}

// HandlePostResult handles POST /api/results and answers with the event's
// refreshed entry board.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	in := req.input(r)
	if err := h.deps.AddResult(r.Context(), in); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	board, err := h.deps.EventBoard(r.Context(), in.EventID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, board)
}

// HandleDeleteResult handles DELETE /api/results/{id}. Unknown ids succeed.
func (h *ResultsHandler) HandleDeleteResult(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteResult(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEventResults handles GET /api/events/{id}/results: every result of
// the event, ranked, whether or not it is still active.
func (h *ResultsHandler) HandleEventResults(w http.ResponseWriter, r *http.Request) {
	board, err := h.deps.EventBoard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

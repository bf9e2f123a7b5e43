package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/export"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

// ExportHandler serves an event's results as a spreadsheet.
type ExportHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies, log logger.Logger) *ExportHandler {
	return &ExportHandler{deps: deps, logger: log}
}

// HandleExport handles GET /api/events/{id}/export.xlsx.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	board, err := h.deps.EventBoard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, board); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(board)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

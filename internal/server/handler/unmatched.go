package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/service"
)

// UnmatchedHandler serves the per-source reconciliation diagnostics.
type UnmatchedHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewUnmatchedHandler creates an UnmatchedHandler.
func NewUnmatchedHandler(scans *service.ScanService, logger *slog.Logger) *UnmatchedHandler {
	return &UnmatchedHandler{
		scans:  scans,
		logger: logHandler(logger, "unmatched"),
	}
}

// GetUnmatched returns leagues and games present on one source with no
// counterpart on the other.
// GET /api/unmatched/{source}
func (h *UnmatchedHandler) GetUnmatched(w http.ResponseWriter, r *http.Request) {
	source := domain.Source(pathParam(r, "source"))

	report, err := h.scans.Unmatched(r.Context(), source)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSource) {
			writeError(w, http.StatusBadRequest, "unknown source: "+string(source))
			return
		}
		h.logger.ErrorContext(r.Context(), "unmatched report failed",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load unmatched report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

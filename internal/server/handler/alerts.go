package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// AlertsHandler serves the history of sent notifications.
type AlertsHandler struct {
	alerts domain.AlertStore
	logger *slog.Logger
}

// NewAlertsHandler creates an AlertsHandler.
func NewAlertsHandler(alerts domain.AlertStore, logger *slog.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: logHandler(logger, "alerts"),
	}
}

// ListRecent returns recently sent alerts, newest first.
// GET /api/alerts/recent?limit=N
func (h *AlertsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list alerts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

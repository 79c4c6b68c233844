package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/boredraw/internal/service"
)

// GamesHandler serves the merged, evaluated view of both snapshots.
type GamesHandler struct {
	scans  *service.ScanService
	logger *slog.Logger
}

// NewGamesHandler creates a GamesHandler.
func NewGamesHandler(scans *service.ScanService, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		scans:  scans,
		logger: logHandler(logger, "games"),
	}
}

// ListGames returns the merged dataset grouped by league, each score carrying
// its computed stakes and outcome model.
// GET /api/games
func (h *GamesHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	merged, err := h.scans.Merged(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "merged view failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to load merged games")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leagues": merged})
}

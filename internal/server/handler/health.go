package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// HealthHandler serves the health-check endpoint, including per-source
// snapshot freshness.
type HealthHandler struct {
	games      domain.GameStore
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewHealthHandler creates a HealthHandler. A source is reported stale when
// its newest snapshot is older than staleAfter.
func NewHealthHandler(games domain.GameStore, staleAfter time.Duration, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		games:      games,
		staleAfter: staleAfter,
		logger:     logHandler(logger, "health"),
	}
}

// HealthCheck reports overall status plus the age of each source's snapshot.
// A source that has never reported, or whose newest snapshot is older than
// the staleness threshold, is flagged; the status degrades but the endpoint
// still returns 200 so load balancers keep the API itself in rotation.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()
	status := "ok"

	sources := make(map[string]any, 2)
	for _, source := range []domain.Source{domain.SourceBookie, domain.SourceExchange} {
		entry := map[string]any{}

		count, err := h.games.Count(ctx, source)
		if err != nil {
			h.logger.ErrorContext(ctx, "count failed",
				slog.String("source", string(source)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		entry["games"] = count

		last, err := h.games.LastScrape(ctx, source)
		if err != nil {
			h.logger.ErrorContext(ctx, "last scrape failed",
				slog.String("source", string(source)),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}

		stale := last.IsZero() || now.Sub(last) > h.staleAfter
		entry["stale"] = stale
		if !last.IsZero() {
			entry["last_scrape"] = last.UTC().Format(time.RFC3339)
			entry["age_seconds"] = int64(now.Sub(last).Seconds())
		}
		if stale {
			status = "degraded"
		}

		sources[string(source)] = entry
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": now.Format(time.RFC3339),
		"sources":   sources,
	})
}

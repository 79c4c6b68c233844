package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/ingest"
	"github.com/alanyoungcy/boredraw/internal/service"
)

// maxIngestBody caps the snapshot payload size (8 MiB).
const maxIngestBody = 8 << 20

// IngestHandler accepts scraper snapshot uploads.
type IngestHandler struct {
	ingests *service.IngestService
	logger  *slog.Logger
}

// NewIngestHandler creates an IngestHandler.
func NewIngestHandler(ingests *service.IngestService, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingests: ingests,
		logger:  logHandler(logger, "ingest"),
	}
}

// ingestPayload is the POST body: one full snapshot from one scraper.
type ingestPayload struct {
	Games []ingest.GamePayload `json:"games"`
}

// PostSnapshot stores one scraper's snapshot. Individual games that fail
// validation are skipped and reported in the response; they never fail the
// batch.
// POST /api/ingest/{source}
func (h *IngestHandler) PostSnapshot(w http.ResponseWriter, r *http.Request) {
	source := domain.Source(pathParam(r, "source"))

	var payload ingestPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody))
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	stored, skipped, err := h.ingests.Snapshot(r.Context(), source, payload.Games)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownSource) {
			writeError(w, http.StatusBadRequest, "unknown source: "+string(source))
			return
		}
		h.logger.ErrorContext(r.Context(), "snapshot store failed",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to store snapshot")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stored":  stored,
		"skipped": skipped,
	})
}

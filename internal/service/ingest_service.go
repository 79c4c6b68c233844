package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/ingest"
)

// IngestService accepts scraper snapshot payloads and persists them. Games
// that fail validation are skipped and counted; they never abort the batch.
type IngestService struct {
	games    domain.GameStore
	ingestor *ingest.Ingestor
	logger   *slog.Logger
}

// NewIngestService creates an IngestService.
func NewIngestService(games domain.GameStore, ingestor *ingest.Ingestor, logger *slog.Logger) *IngestService {
	return &IngestService{
		games:    games,
		ingestor: ingestor,
		logger:   logger.With(slog.String("component", "ingest_service")),
	}
}

// Snapshot converts and stores one scraper batch for the given source. It
// returns the number of games stored and the number skipped.
func (s *IngestService) Snapshot(ctx context.Context, source domain.Source, payloads []ingest.GamePayload) (stored, skipped int, err error) {
	if !source.Valid() {
		return 0, 0, domain.ErrUnknownSource
	}

	games := make([]domain.RawGame, 0, len(payloads))
	for _, p := range payloads {
		g, err := s.ingestor.Game(p)
		if err != nil {
			if errors.Is(err, domain.ErrUnparseableInput) {
				s.logger.WarnContext(ctx, "skipping unparseable game",
					slog.String("source", string(source)),
					slog.String("url", p.URL),
					slog.String("error", err.Error()),
				)
				skipped++
				continue
			}
			return 0, skipped, err
		}
		games = append(games, g)
	}

	if err := s.games.UpsertBatch(ctx, source, games); err != nil {
		return 0, skipped, fmt.Errorf("ingest_service: store %s batch: %w", source, err)
	}

	s.logger.InfoContext(ctx, "snapshot stored",
		slog.String("source", string(source)),
		slog.Int("stored", len(games)),
		slog.Int("skipped", skipped),
	)
	return len(games), skipped, nil
}

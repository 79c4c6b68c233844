package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/ingest"
	"github.com/alanyoungcy/boredraw/internal/normalize"
)

func newTestIngestService() (*IngestService, *fakeGameStore) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	games := newFakeGameStore()
	svc := NewIngestService(games, ingest.New(normalize.DefaultMap(), logger), logger)
	return svc, games
}

func TestSnapshot_StoresValidSkipsInvalid(t *testing.T) {
	svc, games := newTestIngestService()
	ctx := context.Background()

	stored, skipped, err := svc.Snapshot(ctx, domain.SourceBookie, []ingest.GamePayload{
		{
			League: "England Premier League",
			TeamA:  "Arsenal", TeamB: "Chelsea",
			URL:    "https://bookie.example/arsenal-chelsea",
			Scores: []ingest.ScorePayload{{Score: "2-1", Odds: "9.0"}},
		},
		// Missing team names: skipped, not fatal.
		{URL: "https://bookie.example/broken"},
	})
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if stored != 1 || skipped != 1 {
		t.Errorf("Snapshot() = %d stored / %d skipped, want 1 / 1", stored, skipped)
	}

	data, err := games.LoadSource(ctx, domain.SourceBookie)
	if err != nil {
		t.Fatal(err)
	}
	if len(data["English Premier League"]) != 1 {
		t.Errorf("stored data = %v, want the game under its canonical league", data)
	}
}

func TestSnapshot_RejectsUnknownSource(t *testing.T) {
	svc, _ := newTestIngestService()

	_, _, err := svc.Snapshot(context.Background(), domain.Source("sportsbook"), nil)
	if err != domain.ErrUnknownSource {
		t.Errorf("Snapshot(sportsbook) error = %v, want ErrUnknownSource", err)
	}
}

package ingest

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/normalize"
)

func newTestIngestor() *Ingestor {
	in := New(normalize.DefaultMap(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	in.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return in
}

func TestGame_CanonicalizesLeague(t *testing.T) {
	in := newTestIngestor()

	g, err := in.Game(GamePayload{
		League: "England Premier League",
		TeamA:  "Arsenal",
		TeamB:  "Chelsea",
		URL:    "https://bookie.example/arsenal-chelsea",
		Scores: []ScorePayload{{Score: "2-1", Odds: "9.0"}},
	})
	if err != nil {
		t.Fatalf("Game() error = %v", err)
	}
	if g.League != "English Premier League" {
		t.Errorf("League = %q, want English Premier League", g.League)
	}
	if !g.ScrapeTime.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("ScrapeTime = %v, want the injected clock", g.ScrapeTime)
	}
	if len(g.Scores) != 1 || g.Scores[0].Odds != 9.0 {
		t.Errorf("Scores = %v, want one parsed 2-1 entry", g.Scores)
	}
}

func TestGame_RejectsIncompletePayloads(t *testing.T) {
	in := newTestIngestor()

	tests := []struct {
		name    string
		payload GamePayload
	}{
		{"missing team A", GamePayload{TeamB: "Chelsea", URL: "u"}},
		{"missing team B", GamePayload{TeamA: "Arsenal", URL: "u"}},
		{"whitespace teams", GamePayload{TeamA: "  ", TeamB: "Chelsea", URL: "u"}},
		{"missing url", GamePayload{TeamA: "Arsenal", TeamB: "Chelsea"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Game(tt.payload)
			if !errors.Is(err, domain.ErrUnparseableInput) {
				t.Errorf("Game() error = %v, want ErrUnparseableInput", err)
			}
		})
	}
}

func TestParseScores_ReversesDuplicateLabels(t *testing.T) {
	in := newTestIngestor()

	scores := in.ParseScores([]ScorePayload{
		{Score: "2-1", Odds: "9.0"},
		{Score: "1-1", Odds: "6.5"},
		// The grid lists both orientations under the home-side label; the
		// repeat is really the away-side scoreline.
		{Score: "2-1", Odds: "11.0"},
	})

	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	if scores[0].Score != "2-1" || scores[0].Odds != 9.0 {
		t.Errorf("scores[0] = %+v, want 2-1 @ 9.0", scores[0])
	}
	if scores[2].Score != "1-2" || scores[2].Odds != 11.0 {
		t.Errorf("scores[2] = %+v, want reversed 1-2 @ 11.0", scores[2])
	}
}

func TestParseScores_DropsUnparseableOdds(t *testing.T) {
	in := newTestIngestor()

	scores := in.ParseScores([]ScorePayload{
		{Score: "1-0", Odds: "7.5"},
		{Score: "2-0", Odds: "SUSPENDED"},
		{Score: "", Odds: "3.0"},
		{Score: "0-0", Odds: " 10.5 ", Liquidity: "842.50"},
		{Score: "3-0", Odds: "12.0", Liquidity: "n/a"},
	})

	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3 (bad odds and empty labels dropped)", len(scores))
	}
	if scores[1].Score != "0-0" || scores[1].Odds != 10.5 || scores[1].Liquidity != 842.50 {
		t.Errorf("scores[1] = %+v, want 0-0 @ 10.5 with liquidity 842.50", scores[1])
	}
	// Bad liquidity text is ignored, not fatal.
	if scores[2].Score != "3-0" || scores[2].Liquidity != 0 {
		t.Errorf("scores[2] = %+v, want 3-0 with zero liquidity", scores[2])
	}
}

func TestParseMatchTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"not a time", nil},
		{"2026-03-07T15:00:00Z", timePtr(2026, time.March, 7, 15, 0)},
		{"2026-03-07 15:00", timePtr(2026, time.March, 7, 15, 0)},
		// Yearless bookie header assumes the current year.
		{"Mar 7 15:00", timePtr(2026, time.March, 7, 15, 0)},
		{"Sat Mar 7 15:00", timePtr(2026, time.March, 7, 15, 0)},
	}
	for _, tt := range tests {
		got := parseMatchTime(tt.in, now)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseMatchTime(%q) = %v, want nil", tt.in, got)
		case tt.want != nil && got == nil:
			t.Errorf("parseMatchTime(%q) = nil, want %v", tt.in, tt.want)
		case tt.want != nil && !got.Equal(*tt.want):
			t.Errorf("parseMatchTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func timePtr(year int, month time.Month, day, hour, min int) *time.Time {
	t := time.Date(year, month, day, hour, min, 0, 0, time.UTC)
	return &t
}

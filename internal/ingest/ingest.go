// Package ingest is the raw boundary between the external scrapers and the
// store. Scraped values arrive as page text, so this is where numeric
// parsing, kickoff-time parsing, league-name canonicalization, and the
// duplicate score label correction happen. A bad score entry is dropped;
// it never fails the batch.
package ingest

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/normalize"
)

// ScorePayload is one correct-score cell as scraped: label plus odds (and
// exchange-side liquidity) as raw text.
type ScorePayload struct {
	Score     string `json:"score"`
	Odds      string `json:"odds"`
	Liquidity string `json:"liquidity,omitempty"`
}

// GamePayload is one game as posted by a scraper.
type GamePayload struct {
	League    string         `json:"league"`
	TeamA     string         `json:"teamA"`
	TeamB     string         `json:"teamB"`
	MatchTime string         `json:"matchTime,omitempty"`
	URL       string         `json:"url"`
	Scores    []ScorePayload `json:"scores"`
}

// Ingestor converts scraper payloads into stored RawGame snapshots.
type Ingestor struct {
	leagues *normalize.LeagueMap
	now     func() time.Time
	logger  *slog.Logger
}

// New creates an Ingestor using the given league table.
func New(leagues *normalize.LeagueMap, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		leagues: leagues,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "ingest")),
	}
}

// Game validates and converts one scraped game. The returned RawGame's
// league is the canonicalized name the reconciler keys on.
func (in *Ingestor) Game(p GamePayload) (domain.RawGame, error) {
	if strings.TrimSpace(p.TeamA) == "" || strings.TrimSpace(p.TeamB) == "" {
		return domain.RawGame{}, fmt.Errorf("ingest: game %q: missing team names: %w", p.URL, domain.ErrUnparseableInput)
	}
	if strings.TrimSpace(p.URL) == "" {
		return domain.RawGame{}, fmt.Errorf("ingest: game %s v %s: missing url: %w", p.TeamA, p.TeamB, domain.ErrUnparseableInput)
	}

	now := in.now()
	return domain.RawGame{
		League:     in.leagues.League(p.League),
		TeamA:      strings.TrimSpace(p.TeamA),
		TeamB:      strings.TrimSpace(p.TeamB),
		MatchTime:  parseMatchTime(p.MatchTime, now),
		URL:        p.URL,
		ScrapeTime: now,
		Scores:     in.ParseScores(p.Scores),
	}, nil
}

// ParseScores converts the scraped score cells, dropping any entry whose
// odds text does not parse. When a label repeats within one game's listing
// the second occurrence is the opposite-orientation scoreline, so its
// digits are reversed before storing; this keeps score identity stable for
// sources that present both orientations in the same grid.
func (in *Ingestor) ParseScores(payloads []ScorePayload) []domain.ScoreOdds {
	var scores []domain.ScoreOdds
	seen := make(map[string]bool, len(payloads))

	for _, p := range payloads {
		label := normalize.Score(p.Score)
		if label == "" {
			continue
		}
		if seen[label] {
			label = normalize.ReverseScore(label)
		}
		seen[label] = true

		odds, err := strconv.ParseFloat(strings.TrimSpace(p.Odds), 64)
		if err != nil {
			in.logger.Debug("dropping unparseable score entry",
				slog.String("score", p.Score),
				slog.String("odds", p.Odds),
			)
			continue
		}

		score := domain.ScoreOdds{Score: label, Odds: odds}
		if p.Liquidity != "" {
			if liq, err := strconv.ParseFloat(strings.TrimSpace(p.Liquidity), 64); err == nil {
				score.Liquidity = liq
			}
		}
		scores = append(scores, score)
	}

	return scores
}

// matchTimeLayouts are tried in order against the scraped kickoff text.
// The yearless layouts cover the bookie's "Dec 28 19:45" style headers.
var matchTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"Jan 2 15:04 2006",
	"Mon Jan 2 15:04 2006",
}

// parseMatchTime parses a kickoff timestamp, returning nil when the text is
// empty or matches no known layout. Yearless texts assume the current year.
func parseMatchTime(raw string, now time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	candidates := []string{raw, raw + " " + strconv.Itoa(now.Year())}
	for _, c := range candidates {
		for _, layout := range matchTimeLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return &t
			}
		}
	}
	return nil
}

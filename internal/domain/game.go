// Package domain defines the core types shared by every layer of the
// bore-draw scanner: raw per-bookmaker game snapshots, the merged view
// produced by reconciliation, and the computed outcome model.
package domain

import "time"

// Source identifies which bookmaker a raw snapshot came from.
type Source string

const (
	// SourceBookie is the fixed-odds side. Back bets are placed here and it
	// is the side offering the money-back-if-0-0 promotion.
	SourceBookie Source = "bookie"
	// SourceExchange is the lay side.
	SourceExchange Source = "exchange"
)

// Other returns the opposite source.
func (s Source) Other() Source {
	if s == SourceBookie {
		return SourceExchange
	}
	return SourceBookie
}

// Valid reports whether s is one of the two known sources.
func (s Source) Valid() bool {
	return s == SourceBookie || s == SourceExchange
}

// ScoreOdds is a single correct-score price from one source. Liquidity is
// only populated on exchange-side entries.
type ScoreOdds struct {
	Score     string  `json:"score"`
	Odds      float64 `json:"odds"`
	Liquidity float64 `json:"liquidity,omitempty"`
}

// RawGame is one game as scraped from a single source. URL is unique per
// game per source and acts as the idempotency key on re-scrape.
type RawGame struct {
	League     string      `json:"league"`
	TeamA      string      `json:"team_a"`
	TeamB      string      `json:"team_b"`
	MatchTime  *time.Time  `json:"match_time,omitempty"`
	URL        string      `json:"url"`
	ScrapeTime time.Time   `json:"scrape_time"`
	Scores     []ScoreOdds `json:"scores"`
}

// SourceData is a full snapshot from one source, games grouped by the
// source's own league naming.
type SourceData map[string][]RawGame

// OutcomeLeg breaks one outcome bucket into its three legs.
type OutcomeLeg struct {
	Bookie   float64 `json:"bookie"`
	Exchange float64 `json:"exchange"`
	Bonus    float64 `json:"bonus"`
	Total    float64 `json:"total"`
}

// Outcomes holds the three mutually exclusive results of the hedge: the
// backed score lands, the match ends 0-0 and the bookmaker refunds, or
// anything else happens.
type Outcomes struct {
	BackWins OutcomeLeg `json:"backWins"`
	BoreDraw OutcomeLeg `json:"boreDraw"`
	Other    OutcomeLeg `json:"other"`
}

// Min returns the worst-case total across the three buckets.
func (o Outcomes) Min() float64 {
	min := o.BackWins.Total
	if o.BoreDraw.Total < min {
		min = o.BoreDraw.Total
	}
	if o.Other.Total < min {
		min = o.Other.Total
	}
	return min
}

// MergedScore pairs one correct score's back and lay prices, the 0-0
// reference price, and the computed outcome model. Outcomes and the stake
// fields are nil/zero until the calculator has run; they stay unset when
// the score is degenerate (zero lay or refund odds).
type MergedScore struct {
	Score            string    `json:"score"`
	BackOdds         float64   `json:"back_odds"`
	LayOdds          float64   `json:"lay_odds"`
	BoreDrawOdds     float64   `json:"bore_draw_odds"`
	Liquidity        float64   `json:"liquidity"`
	LayStake         float64   `json:"lay_stake,omitempty"`
	BoreDrawLayStake float64   `json:"bore_draw_lay_stake,omitempty"`
	Outcomes         *Outcomes `json:"outcomes,omitempty"`
	Arbable          bool      `json:"arbable"`
}

// MergedGame is the derived cross-source view of one fixture. It carries no
// identity of its own and is recomputed from raw snapshots on every scan.
type MergedGame struct {
	League      string               `json:"league"`
	TeamA       string               `json:"team_a"`
	TeamB       string               `json:"team_b"`
	MatchTime   *time.Time           `json:"match_time,omitempty"`
	URLs        map[Source]string    `json:"urls"`
	ScrapeTimes map[Source]time.Time `json:"scrape_times"`
	Scores      []MergedScore        `json:"scores"`
}

// MergedData groups merged games under their display league label.
type MergedData map[string][]MergedGame

// Alert is the outward notification payload for one arbable score. Profit
// is the worst-case total, i.e. the guaranteed minimum.
type Alert struct {
	ID               string            `json:"id"`
	League           string            `json:"league"`
	TeamA            string            `json:"teamA"`
	TeamB            string            `json:"teamB"`
	Score            string            `json:"score"`
	URLs             map[Source]string `json:"urls"`
	BackStake        float64           `json:"backStake"`
	LayStake         float64           `json:"layStake"`
	BoreDrawLayStake float64           `json:"boreDrawLayStake"`
	Profit           float64           `json:"profit"`
	DetectedAt       time.Time         `json:"detected_at"`
}

// Key is the dedup identity of an alert: same league, teams and score
// collapse into one notification per dedup window.
func (a Alert) Key() string {
	return a.League + "|" + a.TeamA + "|" + a.TeamB + "|" + a.Score
}

// Settings are the runtime-tunable calculation inputs, persisted so the
// dashboard can change them without a restart.
type Settings struct {
	BackStake          float64   `json:"back_stake"`
	CommissionDiscount float64   `json:"commission_discount"`
	Retention          float64   `json:"retention"`
	WebhookURL         string    `json:"webhook_url"`
	UpdatedAt          time.Time `json:"updated_at"`
}

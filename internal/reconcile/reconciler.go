// Package reconcile matches games across the two bookmaker snapshots and
// produces the merged per-score odds pairs that the calculator consumes.
// Reconciliation is pure: it reads its two input snapshots, allocates a new
// result, and never mutates either input, so concurrent scans are safe.
package reconcile

import (
	"log/slog"
	"strings"
	"time"

	"github.com/alanyoungcy/boredraw/internal/domain"
	"github.com/alanyoungcy/boredraw/internal/normalize"
)

// boreDrawLabel is the normalized form of the refund reference score.
const boreDrawLabel = "0-0"

// Policy makes the source-priority tie-breaks explicit: which source's team
// spellings the merged view displays, and whose kickoff time wins when both
// sides have one. The other source is the fallback in each case.
type Policy struct {
	TeamNames domain.Source
	MatchTime domain.Source
}

// DefaultPolicy matches the long-standing convention: the exchange is
// canonical for team names, the bookie for kickoff times.
func DefaultPolicy() Policy {
	return Policy{
		TeamNames: domain.SourceExchange,
		MatchTime: domain.SourceBookie,
	}
}

// Reconciler merges the two sources' snapshots into per-league MergedGame
// lists and builds the unmatched diagnostics report.
type Reconciler struct {
	leagues *normalize.LeagueMap
	policy  Policy
	logger  *slog.Logger
}

// New creates a Reconciler using the given league table and merge policy.
func New(leagues *normalize.LeagueMap, policy Policy, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		leagues: leagues,
		policy:  policy,
		logger:  logger.With(slog.String("component", "reconciler")),
	}
}

// leaguePair is one competition present on both sources.
type leaguePair struct {
	bookie   string
	exchange string
	label    string
}

// displayLabel picks the merged league's display name: explicit override,
// then the exchange's name, then the bookie's.
func (p leaguePair) displayLabel() string {
	switch {
	case p.label != "":
		return p.label
	case p.exchange != "":
		return p.exchange
	default:
		return p.bookie
	}
}

// commonLeagues finds competitions with data on both sides: league names
// that appear verbatim in both snapshots, plus mapping-table entries whose
// two names are each present on their own side. The two paths are disjoint
// for canonicalized input, so no dedup is attempted.
func (r *Reconciler) commonLeagues(bookie, exchange domain.SourceData) []leaguePair {
	var pairs []leaguePair

	for league := range bookie {
		if _, ok := exchange[league]; ok {
			pairs = append(pairs, leaguePair{bookie: league, exchange: league})
		}
	}

	for _, m := range r.leagues.Mappings {
		_, onBookie := bookie[m.Bookie]
		_, onExchange := exchange[m.Exchange]
		if onBookie && onExchange && m.Bookie != m.Exchange {
			pairs = append(pairs, leaguePair{bookie: m.Bookie, exchange: m.Exchange, label: m.Label})
		}
	}

	return pairs
}

// Reconcile merges the two snapshots. Games present on only one side are
// dropped here (they surface via Unmatched instead); games whose score
// lists cannot be paired are kept with an empty score list.
func (r *Reconciler) Reconcile(bookie, exchange domain.SourceData) domain.MergedData {
	merged := make(domain.MergedData)

	for _, pair := range r.commonLeagues(bookie, exchange) {
		label := pair.displayLabel()

		for _, bg := range bookie[pair.bookie] {
			eg, ok := findGame(exchange[pair.exchange], bg.TeamA, bg.TeamB)
			if !ok {
				continue
			}

			scores, err := r.mergeScores(bg.Scores, eg.Scores)
			if err != nil {
				// The exchange listed this game without a 0-0 price, so no
				// score is evaluable. Keep the game visible with an empty
				// score list rather than hiding it entirely.
				r.logger.Warn("dropping scores for game without 0-0 reference",
					slog.String("league", label),
					slog.String("team_a", bg.TeamA),
					slog.String("team_b", bg.TeamB),
				)
				scores = nil
			}

			merged[label] = append(merged[label], domain.MergedGame{
				League:    label,
				TeamA:     r.pickTeam(bg.TeamA, eg.TeamA),
				TeamB:     r.pickTeam(bg.TeamB, eg.TeamB),
				MatchTime: r.pickMatchTime(bg.MatchTime, eg.MatchTime),
				URLs: map[domain.Source]string{
					domain.SourceBookie:   bg.URL,
					domain.SourceExchange: eg.URL,
				},
				ScrapeTimes: map[domain.Source]time.Time{
					domain.SourceBookie:   bg.ScrapeTime,
					domain.SourceExchange: eg.ScrapeTime,
				},
				Scores: scores,
			})
		}
	}

	return merged
}

// findGame searches a league's game list for a fixture with the same team
// names, case-insensitively, in the same order. Swapped-order matching is
// deliberately not attempted.
func findGame(games []domain.RawGame, teamA, teamB string) (domain.RawGame, bool) {
	for _, g := range games {
		if strings.EqualFold(g.TeamA, teamA) && strings.EqualFold(g.TeamB, teamB) {
			return g, true
		}
	}
	return domain.RawGame{}, false
}

func (r *Reconciler) pickTeam(bookieName, exchangeName string) string {
	if r.policy.TeamNames == domain.SourceBookie {
		return bookieName
	}
	return exchangeName
}

func (r *Reconciler) pickMatchTime(bookieTime, exchangeTime *time.Time) *time.Time {
	primary, fallback := bookieTime, exchangeTime
	if r.policy.MatchTime == domain.SourceExchange {
		primary, fallback = exchangeTime, bookieTime
	}
	if primary != nil {
		return primary
	}
	return fallback
}

// mergeScores pairs the bookie's score entries with the exchange's by
// normalized label. Bookie scores with no exchange counterpart are dropped;
// they cannot be evaluated without both sides' prices. The exchange's own
// 0-0 entry supplies the refund reference price for every merged score.
// When the exchange has no 0-0 entry it returns ErrMissingReferenceOdds.
func (r *Reconciler) mergeScores(bookieScores, exchangeScores []domain.ScoreOdds) ([]domain.MergedScore, error) {
	refOdds, ok := findScore(exchangeScores, boreDrawLabel)
	if !ok {
		return nil, domain.ErrMissingReferenceOdds
	}

	var merged []domain.MergedScore
	for _, bs := range bookieScores {
		label := normalize.Score(bs.Score)
		es, ok := findScore(exchangeScores, label)
		if !ok {
			continue
		}
		merged = append(merged, domain.MergedScore{
			Score:        label,
			BackOdds:     bs.Odds,
			LayOdds:      es.Odds,
			BoreDrawOdds: refOdds.Odds,
			Liquidity:    es.Liquidity,
		})
	}
	return merged, nil
}

// findScore searches a score list for the given normalized label.
func findScore(scores []domain.ScoreOdds, normalized string) (domain.ScoreOdds, bool) {
	for _, s := range scores {
		if normalize.Score(s.Score) == normalized {
			return s, true
		}
	}
	return domain.ScoreOdds{}, false
}

// Unmatched builds the diagnostics report for one source: leagues with no
// counterpart on the other side, and games inside common leagues that the
// other side does not list. Leagues on the known-unmatched list are
// suppressed at the league level to keep the report useful.
func (r *Reconciler) Unmatched(source domain.Source, from, other domain.SourceData) domain.UnmatchedReport {
	report := domain.UnmatchedReport{
		Source: source,
		Games:  make(map[string][]domain.RawGame),
	}

	for league, games := range from {
		target := r.leagues.MappedName(source, league)

		if _, ok := other[target]; !ok {
			if r.leagues.KnownUnmatched(source, league) {
				continue
			}
			report.Leagues = append(report.Leagues, league)
			report.Games[league] = append([]domain.RawGame(nil), games...)
			continue
		}

		for _, g := range games {
			if _, ok := findGame(other[target], g.TeamA, g.TeamB); !ok {
				report.Games[league] = append(report.Games[league], g)
			}
		}
	}

	return report
}

// Package normalize canonicalizes the league and score labels used as
// equality keys when pairing data from the two bookmakers. Everything here
// is pure string manipulation; cross-source league mapping lives in the
// LeagueMap table, not in the normalizer itself.
package normalize

import (
	"regexp"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// Rule is a single find/replace substitution. Rules run in list order, so a
// later rule sees the output of earlier ones.
type Rule struct {
	Find    *regexp.Regexp
	Replace string
}

// Mapping pairs a league that the two sources name differently beyond what
// the substitution rules can fix. Label, when set, overrides the display
// name of the merged league.
type Mapping struct {
	Bookie   string `toml:"bookie"`
	Exchange string `toml:"exchange"`
	Label    string `toml:"label"`
}

// Name returns the mapping's name on the given source.
func (m Mapping) Name(s domain.Source) string {
	if s == domain.SourceBookie {
		return m.Bookie
	}
	return m.Exchange
}

// LeagueMap bundles the substitution rules, the explicit cross-source
// mapping table, and the per-source lists of leagues known to have no
// counterpart (used only to quiet the unmatched report).
type LeagueMap struct {
	Rules    []Rule
	Mappings []Mapping
	Known    map[domain.Source][]string
}

// League applies the map's substitution rules to a raw league name. Empty
// input is returned unchanged. This canonicalizes one source's vocabulary
// into the shared spelling convention; it never consults the mapping table.
func (lm *LeagueMap) League(raw string) string {
	if raw == "" {
		return raw
	}
	for _, r := range lm.Rules {
		raw = r.Find.ReplaceAllString(raw, r.Replace)
	}
	return raw
}

// KnownUnmatched reports whether the league is on the given source's list
// of leagues that are known to exist only there.
func (lm *LeagueMap) KnownUnmatched(s domain.Source, league string) bool {
	for _, l := range lm.Known[s] {
		if l == league {
			return true
		}
	}
	return false
}

// MappedName translates a league name from one source to its counterpart on
// the other via the mapping table. When no entry matches, the name is
// returned as-is, which covers the common case of identical naming.
func (lm *LeagueMap) MappedName(from domain.Source, league string) string {
	for _, m := range lm.Mappings {
		if m.Name(from) == league {
			return m.Name(from.Other())
		}
	}
	return league
}

// rule is a convenience constructor for the default table.
func rule(find, replace string) Rule {
	return Rule{Find: regexp.MustCompile(find), Replace: replace}
}

// DefaultMap returns the built-in league table: the country-adjective
// substitutions both scrapers rely on, the hand-curated cross-source
// mappings, and the known single-source leagues.
func DefaultMap() *LeagueMap {
	return &LeagueMap{
		Rules: []Rule{
			rule(`^Algeria `, "Algerian "),
			rule(`^Argentina `, "Argentinian "),
			rule(`^Australia `, "Australian "),
			rule(`^Bahrain `, "Bahraini "),
			rule(`^Chile `, "Chilean "),
			rule(`^Colombia `, "Colombian "),
			rule(`^Costa Rica `, "Costa Rican "),
			rule(`^England `, "English "),
			rule(`^France `, "French "),
			rule(`^Germany `, "German "),
			rule(`^Italy `, "Italian "),
			rule(`^Portugal `, "Portuguese "),
			rule(`^Scotland `, "Scottish "),
			rule(`^Spain `, "Spanish "),
			rule(`^Turkey `, "Turkish "),
		},
		Mappings: []Mapping{
			{Bookie: "AFC Asian Cup Women", Exchange: "AFC Ladies Asian Cup"},
			{Bookie: "Algerian Division 2", Exchange: "Algerian Ligue 2"},
			{Bookie: "Australian A-League", Exchange: "Australian A-League Men"},
			{Bookie: "Australian A-League Women", Exchange: "Australian A-League Women"},
			{Bookie: "Czech Republic First League", Exchange: "Czech 1 Liga"},
			{Bookie: "English EFL Cup", Exchange: "English Football League Cup"},
			{Bookie: "English Isthmian Cup", Exchange: "English Isthmian League Cup"},
			{Bookie: "English U23 Development League", Exchange: "England U23 Pro Development League"},
			{Bookie: "German Bundesliga I", Exchange: "German Bundesliga"},
		},
		Known: map[domain.Source][]string{
			domain.SourceBookie: {
				"Australian Friendlies",
				"English National League North",
				"English National League South",
				"English Southern League Division One",
				"English Northern League Division One",
				"English League Cup Women",
				"Northern Ireland Premier",
				"Northern Ireland Reserve League",
				"Wales Premier League",
			},
			domain.SourceExchange: {
				"English FA Women's Super League Cup",
			},
		},
	}
}

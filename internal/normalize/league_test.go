package normalize

import (
	"testing"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

func TestLeague_CountryAdjectives(t *testing.T) {
	lm := DefaultMap()

	tests := []struct {
		in   string
		want string
	}{
		{"England Premier League", "English Premier League"},
		{"Spain La Liga", "Spanish La Liga"},
		{"Germany Bundesliga", "German Bundesliga"},
		{"Italy Serie A", "Italian Serie A"},
		{"Scotland Premiership", "Scottish Premiership"},
		{"Costa Rica Primera Division", "Costa Rican Primera Division"},
		// Only a leading country name is rewritten.
		{"Copa England Trophy", "Copa England Trophy"},
		// Already-adjectival names pass through.
		{"English Premier League", "English Premier League"},
		{"", ""},
	}
	for _, tt := range tests {
		got := lm.League(tt.in)
		if got != tt.want {
			t.Errorf("League(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMappedName_RoundTrip(t *testing.T) {
	lm := DefaultMap()

	for _, m := range lm.Mappings {
		if got := lm.MappedName(domain.SourceBookie, m.Bookie); got != m.Exchange {
			t.Errorf("MappedName(bookie, %q) = %q, want %q", m.Bookie, got, m.Exchange)
		}
		if got := lm.MappedName(domain.SourceExchange, m.Exchange); got != m.Bookie {
			t.Errorf("MappedName(exchange, %q) = %q, want %q", m.Exchange, got, m.Bookie)
		}
	}
}

func TestMappedName_UnknownPassesThrough(t *testing.T) {
	lm := DefaultMap()

	if got := lm.MappedName(domain.SourceBookie, "French Ligue 1"); got != "French Ligue 1" {
		t.Errorf("MappedName(bookie, French Ligue 1) = %q, want unchanged", got)
	}
}

func TestKnownUnmatched(t *testing.T) {
	lm := DefaultMap()

	if !lm.KnownUnmatched(domain.SourceBookie, "Wales Premier League") {
		t.Error("Wales Premier League should be known-unmatched on the bookie side")
	}
	if lm.KnownUnmatched(domain.SourceExchange, "Wales Premier League") {
		t.Error("Wales Premier League should not be known-unmatched on the exchange side")
	}
	if lm.KnownUnmatched(domain.SourceBookie, "English Premier League") {
		t.Error("English Premier League should never be known-unmatched")
	}
}

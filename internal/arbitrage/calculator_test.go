package arbitrage

import (
	"math"
	"testing"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

const tolerance = 1e-6

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestParams_Commission(t *testing.T) {
	tests := []struct {
		discount float64
		want     float64
	}{
		{0, 0.05},
		{20, 0.04},
		{50, 0.025},
		{100, 0},
	}
	for _, tt := range tests {
		p := Params{CommissionDiscount: tt.discount}
		if got := p.Commission(); !approxEqual(got, tt.want) {
			t.Errorf("Commission() with discount %g = %g, want %g", tt.discount, got, tt.want)
		}
	}
}

func TestEvaluateScore_KnownProfitableScore(t *testing.T) {
	p := Params{Stake: 50, CommissionDiscount: 0, Retention: 80}
	score := domain.MergedScore{
		Score:        "2-1",
		BackOdds:     5.0,
		LayOdds:      1.8,
		BoreDrawOdds: 9.0,
	}

	got := EvaluateScore(score, p)

	if !approxEqual(got.LayStake, 143.6507936508) {
		t.Errorf("LayStake = %.10f, want 143.6507936508", got.LayStake)
	}
	if !approxEqual(got.BoreDrawLayStake, 4.6783625731) {
		t.Errorf("BoreDrawLayStake = %.10f, want 4.6783625731", got.BoreDrawLayStake)
	}
	if got.Outcomes == nil {
		t.Fatal("Outcomes should be computed")
	}
	if !approxEqual(got.Outcomes.BackWins.Total, 89.7577276525) {
		t.Errorf("BackWins.Total = %.10f, want 89.7577276525", got.Outcomes.BackWins.Total)
	}
	if !approxEqual(got.Outcomes.BoreDraw.Total, 90.9126984127) {
		t.Errorf("BoreDraw.Total = %.10f, want 90.9126984127", got.Outcomes.BoreDraw.Total)
	}
	if !approxEqual(got.Outcomes.Other.Total, 90.9126984127) {
		t.Errorf("Other.Total = %.10f, want 90.9126984127", got.Outcomes.Other.Total)
	}
	if !got.Arbable {
		t.Error("score should be arbable: worst case is positive")
	}
}

// The bore-draw lay is sized so the 0-0 bucket and the catch-all bucket pay
// out identically: the lay exactly replaces the bookmaker's refund.
func TestEvaluateScore_BoreDrawMatchesOther(t *testing.T) {
	tests := []struct {
		name                   string
		stake, discount, ret   float64
		back, lay, refund, liq float64
	}{
		{"baseline", 50, 0, 80, 5.0, 1.8, 9.0, 500},
		{"with discount", 100, 20, 70, 4.2, 2.0, 8.5, 200},
		{"small stake", 10, 0, 100, 6.0, 1.5, 11.0, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Stake: tt.stake, CommissionDiscount: tt.discount, Retention: tt.ret}
			got := EvaluateScore(domain.MergedScore{
				Score:        "1-0",
				BackOdds:     tt.back,
				LayOdds:      tt.lay,
				BoreDrawOdds: tt.refund,
				Liquidity:    tt.liq,
			}, p)
			if got.Outcomes == nil {
				t.Fatal("Outcomes should be computed")
			}
			if !approxEqual(got.Outcomes.BoreDraw.Total, got.Outcomes.Other.Total) {
				t.Errorf("BoreDraw.Total = %.10f, Other.Total = %.10f, want equal",
					got.Outcomes.BoreDraw.Total, got.Outcomes.Other.Total)
			}
		})
	}
}

func TestEvaluateScore_NotArbableWhenSpreadTooTight(t *testing.T) {
	p := Params{Stake: 50, CommissionDiscount: 0, Retention: 80}
	got := EvaluateScore(domain.MergedScore{
		Score:        "1-1",
		BackOdds:     3.0,
		LayOdds:      3.2,
		BoreDrawOdds: 9.0,
	}, p)

	if got.Outcomes == nil {
		t.Fatal("Outcomes should still be computed for non-arbable scores")
	}
	if got.Outcomes.Min() > 0 {
		t.Fatalf("expected a negative worst case, got %.10f", got.Outcomes.Min())
	}
	if got.Arbable {
		t.Error("score should not be arbable when the worst case loses")
	}
}

func TestEvaluateScore_ZeroOddsAreDegenerate(t *testing.T) {
	p := Params{Stake: 50, Retention: 80}

	tests := []struct {
		name        string
		lay, refund float64
	}{
		{"no lay price", 0, 9.0},
		{"no refund price", 1.8, 0},
		{"neither price", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateScore(domain.MergedScore{
				Score:        "2-0",
				BackOdds:     5.0,
				LayOdds:      tt.lay,
				BoreDrawOdds: tt.refund,
				Arbable:      true,
				Outcomes:     &domain.Outcomes{},
			}, p)
			if got.Arbable {
				t.Error("degenerate score must not be arbable")
			}
			if got.Outcomes != nil {
				t.Error("degenerate score must have no outcome model")
			}
		})
	}
}

func TestEvaluateScore_HigherRetentionRaisesRefundBucket(t *testing.T) {
	score := domain.MergedScore{
		Score:        "2-1",
		BackOdds:     5.0,
		LayOdds:      1.8,
		BoreDrawOdds: 9.0,
	}

	low := EvaluateScore(score, Params{Stake: 50, Retention: 50})
	high := EvaluateScore(score, Params{Stake: 50, Retention: 90})

	if high.Outcomes.BoreDraw.Total <= low.Outcomes.BoreDraw.Total {
		t.Errorf("retention 90 bore-draw total %.6f should exceed retention 50 total %.6f",
			high.Outcomes.BoreDraw.Total, low.Outcomes.BoreDraw.Total)
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	p := Params{Stake: 50, Retention: 80}
	in := domain.MergedData{
		"English Premier League": {
			{
				League: "English Premier League",
				TeamA:  "Arsenal",
				TeamB:  "Chelsea",
				Scores: []domain.MergedScore{
					{Score: "2-1", BackOdds: 5.0, LayOdds: 1.8, BoreDrawOdds: 9.0},
				},
			},
		},
	}

	out := Evaluate(in, p)

	if in["English Premier League"][0].Scores[0].Outcomes != nil {
		t.Error("input data must not be mutated")
	}
	outScore := out["English Premier League"][0].Scores[0]
	if outScore.Outcomes == nil {
		t.Error("output score should carry the outcome model")
	}
	if !outScore.Arbable {
		t.Error("output score should be arbable")
	}
}

func TestOutcomesMin(t *testing.T) {
	o := domain.Outcomes{
		BackWins: domain.OutcomeLeg{Total: 3.5},
		BoreDraw: domain.OutcomeLeg{Total: -1.2},
		Other:    domain.OutcomeLeg{Total: 0.8},
	}
	if got := o.Min(); !approxEqual(got, -1.2) {
		t.Errorf("Min() = %g, want -1.2", got)
	}
}

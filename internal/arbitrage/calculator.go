// Package arbitrage sizes the bore-draw lay hedge and computes the three
// possible financial outcomes for every merged score. A score is flagged
// arbable only when its worst-case outcome is still strictly profitable;
// expected value plays no part. The calculator is pure and carries all of
// its inputs explicitly.
package arbitrage

import (
	"github.com/alanyoungcy/boredraw/internal/domain"
)

// baseCommissionRate is the exchange's standard commission on net winnings.
const baseCommissionRate = 0.05

// Params are the externally configured calculation inputs.
// CommissionDiscount and Retention are percentages in [0, 100].
type Params struct {
	Stake              float64
	CommissionDiscount float64
	Retention          float64
}

// Commission returns the effective exchange commission after the account's
// discount is applied.
func (p Params) Commission() float64 {
	return baseCommissionRate * (100 - p.CommissionDiscount) / 100
}

// EvaluateScore computes stakes and the three outcome buckets for a single
// merged score, returning an updated copy. Zero lay or refund odds mark the
// score non-arbable immediately with no outcome computation.
func EvaluateScore(score domain.MergedScore, p Params) domain.MergedScore {
	if score.LayOdds == 0 || score.BoreDrawOdds == 0 {
		score.Arbable = false
		score.Outcomes = nil
		return score
	}

	commission := p.Commission()
	retention := p.Retention / 100

	backOdds := score.BackOdds
	layOdds := score.LayOdds
	refundOdds := score.BoreDrawOdds

	// The lay stake covers the back bet's payout; the small (1/layOdds)%
	// bump accounts for commission on the exchange side of the ledger. The
	// bore-draw lay is sized so its post-commission payout replaces the
	// bookmaker's retained bonus exactly.
	layStake := (p.Stake * backOdds) / (layOdds - commission) * (1 + (1/layOdds)/100)
	boreDrawLayStake := p.Stake * retention / refundOdds / (1 - commission)

	outcomes := &domain.Outcomes{
		BackWins: leg(
			p.Stake*(backOdds-1),
			-layStake*(layOdds-1)+boreDrawLayStake,
			0,
		),
		BoreDraw: leg(
			-p.Stake,
			(layStake-boreDrawLayStake*(refundOdds-1))*(1-commission),
			p.Stake*retention,
		),
		Other: leg(
			-p.Stake,
			(layStake+boreDrawLayStake)*(1-commission),
			0,
		),
	}

	score.LayStake = layStake
	score.BoreDrawLayStake = boreDrawLayStake
	score.Outcomes = outcomes
	score.Arbable = outcomes.Min() > 0
	return score
}

// EvaluateGame runs EvaluateScore over every score of a merged game and
// returns the game with its score list replaced by the evaluated copies.
func EvaluateGame(game domain.MergedGame, p Params) domain.MergedGame {
	if len(game.Scores) == 0 {
		return game
	}
	scores := make([]domain.MergedScore, len(game.Scores))
	for i, s := range game.Scores {
		scores[i] = EvaluateScore(s, p)
	}
	game.Scores = scores
	return game
}

// Evaluate runs EvaluateGame across an entire merged dataset, returning a
// new map. The input is never mutated.
func Evaluate(data domain.MergedData, p Params) domain.MergedData {
	out := make(domain.MergedData, len(data))
	for league, games := range data {
		evaluated := make([]domain.MergedGame, len(games))
		for i, g := range games {
			evaluated[i] = EvaluateGame(g, p)
		}
		out[league] = evaluated
	}
	return out
}

func leg(bookie, exchange, bonus float64) domain.OutcomeLeg {
	return domain.OutcomeLeg{
		Bookie:   bookie,
		Exchange: exchange,
		Bonus:    bonus,
		Total:    bookie + exchange + bonus,
	}
}

// Package rewards implements the maker-incentive scoring scheme: the
// per-order quadratic score, the two-sided aggregation into Q-scores, and the
// share-of-pool reward projection.
package rewards

import (
	"lp-optimizer-go/market"
)

// QScore is the two-sided liquidity score of one party's order set. Derived,
// never persisted: recomputed on every call.
type QScore struct {
	QOne float64 // YES-BID + NO-ASK liquidity
	QTwo float64 // YES-ASK + NO-BID liquidity
	QMin float64 // combined score determining reward share
}

// ScoringParams carries the combination-rule constants. They are explicit
// arguments rather than package globals so alternate calibrations can be
// tested deterministically.
type ScoringParams struct {
	// SingleSidedPenalty divides a one-sided score in the lenient midpoint
	// band. A party providing only one side earns at most 1/penalty of its
	// one-sided score.
	SingleSidedPenalty float64

	// LenientMin/LenientMax bound the midpoint band (inclusive) in which
	// single-sided liquidity still earns a reduced score. Outside the band
	// both directions are mandatory.
	LenientMin float64
	LenientMax float64
}

// DefaultScoringParams returns the venue calibration.
func DefaultScoringParams() ScoringParams {
	return ScoringParams{
		SingleSidedPenalty: 3.0,
		LenientMin:         0.10,
		LenientMax:         0.90,
	}
}

// ScoreOrder returns the reward score of a single resting order. Orders below
// the minimum size or outside the max qualifying spread score 0; an order
// exactly at the midpoint scores its full size. The quadratic falloff makes a
// move away from the midpoint cost proportionally more as distance grows.
func ScoreOrder(o market.Order, m market.Market) float64 {
	if m.MaxSpread <= 0 || o.Size < m.MinSize {
		return 0
	}
	s := o.Spread(m)
	if s > m.MaxSpread {
		return 0
	}
	r := (m.MaxSpread - s) / m.MaxSpread
	return r * r * o.Size
}

// ScoreOrders aggregates a party's orders into a QScore.
//
// Orders group into two complementary liquidity directions rather than a
// plain buy/sell split: a NO-ASK is economically equivalent to a YES-BID in a
// binary market, so QOne sums YES-BID and NO-ASK scores and QTwo sums YES-ASK
// and NO-BID scores.
func ScoreOrders(orders []market.Order, m market.Market, p ScoringParams) QScore {
	var q QScore
	for _, o := range orders {
		score := ScoreOrder(o, m)
		switch {
		case o.Side == market.SideYes && o.Type == market.TypeBid,
			o.Side == market.SideNo && o.Type == market.TypeAsk:
			q.QOne += score
		default:
			q.QTwo += score
		}
	}
	q.QMin = combine(q.QOne, q.QTwo, m.Midpoint, p)
	return q
}

// combine applies the single-sided-penalty rule.
//
// Inside the lenient midpoint band the combined score is whichever is larger:
// balanced two-sided liquidity (the min term) or a penalized single-sided
// position (the /penalty term). At extreme midpoints single-sided liquidity
// earns nothing; such markets need guaranteed two-sided depth.
func combine(qOne, qTwo, midpoint float64, p ScoringParams) float64 {
	if midpoint < p.LenientMin || midpoint > p.LenientMax {
		return min(qOne, qTwo)
	}
	balanced := min(qOne, qTwo)
	penalized := max(qOne, qTwo)
	if p.SingleSidedPenalty > 0 {
		penalized /= p.SingleSidedPenalty
	}
	return max(balanced, penalized)
}

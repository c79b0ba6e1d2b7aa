// Package strategy contains the fill-probability model and the spread
// optimizer that searches candidate order placements for the best
// risk-adjusted expected return.
package strategy

import (
	"math"

	"lp-optimizer-go/market"
)

// RiskLevel classifies fill probability into operator-facing bands.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "VeryHigh"
)

// FillEstimate is the probability that a resting order at a given spread is
// matched within the time horizon, losing its liquidity-providing status.
type FillEstimate struct {
	Probability        float64 // capped at 0.95, never reported as certain
	ExpectedTimeToFill float64 // hours
	ConfidenceLow      float64
	ConfidenceHigh     float64
	Risk               RiskLevel
}

const (
	maxFillProbability = 0.95
	confidenceBand     = 0.15 // fixed-width heuristic, not a variance estimate

	// Depth damping: resting liquidity on the same side absorbs incoming
	// flow before our order, scaling down to 0.5 at depthSaturation shares.
	depthSaturation = 100_000
	minDepthFactor  = 0.5
)

// EstimateFillProbability models the chance an order at the given absolute
// spread from the midpoint fills within horizonDays, given the market's
// volatility statistics and the resting order-book depth on the same side.
//
// Price movement is approximated as a diffusion: the hit rate
// lambda = (hourlyStdDev/spread)^2 rises with volatility and with narrower
// spreads, and the survival form p = 1 - e^(-lambda*hours) rises with elapsed
// time. The constants are empirically chosen, not derived from a rigorous
// stochastic model.
func EstimateFillProbability(spread float64, vol market.VolatilityMetrics, orderBookDepth, horizonDays float64) FillEstimate {
	if spread <= 0 {
		// Already marketable.
		return estimate(1.0, 0, 0)
	}
	horizonHours := horizonDays * 24

	if vol.Score == 0 {
		// No usable volatility signal (flat or missing history): fall back
		// to a conservative spread-banded estimate.
		p := fallbackProbability(spread, horizonDays)
		return estimate(p, horizonHours, 0)
	}

	lambda := vol.HourlyStdDev / spread
	lambda *= lambda
	p := 1 - math.Exp(-lambda*horizonHours)

	p *= depthFactor(orderBookDepth)
	if p > maxFillProbability {
		p = maxFillProbability
	}
	return estimate(p, horizonHours, lambda)
}

// fallbackProbability is keyed only on spread width, scaled linearly by the
// horizon relative to the 30-day default.
func fallbackProbability(spread, horizonDays float64) float64 {
	var base float64
	switch {
	case spread < 0.01:
		base = 0.70
	case spread < 0.02:
		base = 0.50
	case spread < 0.03:
		base = 0.30
	default:
		base = 0.15
	}
	p := base * horizonDays / 30
	if p > maxFillProbability {
		return maxFillProbability
	}
	return p
}

func depthFactor(depth float64) float64 {
	r := depth / depthSaturation
	if r > 1 {
		r = 1
	}
	f := 1 - 0.5*r
	if f < minDepthFactor {
		return minDepthFactor
	}
	return f
}

func estimate(p, horizonHours, lambda float64) FillEstimate {
	e := FillEstimate{
		Probability:        p,
		ExpectedTimeToFill: horizonHours,
		ConfidenceLow:      clamp01(p - confidenceBand),
		ConfidenceHigh:     clamp01(p + confidenceBand),
		Risk:               classifyRisk(p),
	}
	if lambda > 0 && p < maxFillProbability {
		e.ExpectedTimeToFill = -math.Log(1-p) / lambda
	}
	if p >= 1 {
		e.ExpectedTimeToFill = 0
	}
	return e
}

func classifyRisk(p float64) RiskLevel {
	switch {
	case p < 0.10:
		return RiskLow
	case p < 0.25:
		return RiskMedium
	case p < 0.50:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package strategy

import (
	"lp-optimizer-go/market"
	"lp-optimizer-go/rewards"
)

// Options configure one optimizer invocation. Zero values are backfilled with
// the defaults.
type Options struct {
	TimeHorizonDays     float64 // reward accrual horizon, default 30
	MinSpreadRatio      float64 // lower grid bound as fraction of maxSpread, default 0.25
	MaxSpreadRatio      float64 // upper grid bound, default 0.80
	SpreadStep          float64 // grid step, default 0.05
	TransactionCostRate float64 // one-time cost charged on fill, default 0.02; negative requests an explicit zero
	OrderBookDepth      float64 // assumed same-side resting depth, default 50000
	Scoring             rewards.ScoringParams
}

// DefaultOptions returns the default search configuration.
func DefaultOptions() Options {
	return Options{
		TimeHorizonDays:     30,
		MinSpreadRatio:      0.25,
		MaxSpreadRatio:      0.80,
		SpreadStep:          0.05,
		TransactionCostRate: 0.02,
		OrderBookDepth:      50_000,
		Scoring:             rewards.DefaultScoringParams(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TimeHorizonDays <= 0 {
		o.TimeHorizonDays = d.TimeHorizonDays
	}
	if o.MinSpreadRatio <= 0 {
		o.MinSpreadRatio = d.MinSpreadRatio
	}
	if o.MaxSpreadRatio <= 0 {
		o.MaxSpreadRatio = d.MaxSpreadRatio
	}
	if o.SpreadStep <= 0 {
		o.SpreadStep = d.SpreadStep
	}
	// Zero means unset here; callers that genuinely want a free-fill model
	// pass a negative rate.
	if o.TransactionCostRate == 0 {
		o.TransactionCostRate = d.TransactionCostRate
	} else if o.TransactionCostRate < 0 {
		o.TransactionCostRate = 0
	}
	if o.OrderBookDepth <= 0 {
		o.OrderBookDepth = d.OrderBookDepth
	}
	if o.Scoring == (rewards.ScoringParams{}) {
		o.Scoring = d.Scoring
	}
	return o
}

// PlacedOrder is one leg of the recommended placement; the order-submission
// layer consumes price and size and handles signing and venue submission.
type PlacedOrder struct {
	Price float64
	Size  float64 // shares
}

// OptimalPlacement is the optimizer's sole output, built fresh per
// invocation.
type OptimalPlacement struct {
	BuyOrder  PlacedOrder // buy YES below the midpoint
	SellOrder PlacedOrder // buy NO, i.e. sell YES exposure above the midpoint

	QScore              rewards.QScore
	ExpectedDailyReward float64
	CapitalEfficiency   float64 // daily reward per unit of capital deployed
	FillProbability     float64
	ExpectedValue       float64
	RiskAdjustedReturn  float64
	VolatilityScore     float64
	SpreadRatio         float64 // chosen spread as fraction of maxSpread
}

// Price bounds for resting orders on a binary market.
const (
	minOrderPrice = 0.01
	maxOrderPrice = 0.99
)

// fallbackSpreadRatio is recomputed as a last resort when the grid yields no
// candidate (only possible when the volatility floor exceeds MaxSpreadRatio).
const fallbackSpreadRatio = 0.35

// Optimize grid-searches candidate spread ratios for the market and returns
// the placement with the highest expected value over the horizon.
//
// The grid is a coarse fixed-step scan on purpose: bounded, deterministic,
// and easy to test. Expected-value curves here are not guaranteed smooth or
// unimodal, so a convergent optimizer could silently settle on the wrong
// ratio. Selection is by raw expected value; the risk-adjusted return is
// reported alongside as a secondary decision aid.
func Optimize(m market.Market, capital float64, history []market.PricePoint, competitionQMin float64, opts Options) OptimalPlacement {
	opts = opts.withDefaults()
	vol := market.AnalyzeVolatility(history)

	// Never test spreads the volatility model flags as unsafe.
	minRatio := opts.MinSpreadRatio
	if floor := vol.RecommendedMinSpreadRatio(); floor > minRatio {
		minRatio = floor
	}

	var (
		best  OptimalPlacement
		found bool
	)
	for i := 0; ; i++ {
		ratio := minRatio + float64(i)*opts.SpreadStep
		if ratio > opts.MaxSpreadRatio+1e-9 {
			break
		}
		c := evaluate(m, capital, ratio, vol, competitionQMin, opts)
		if !found || c.ExpectedValue > best.ExpectedValue {
			best = c
			found = true
		}
	}
	if !found {
		best = evaluate(m, capital, fallbackSpreadRatio, vol, competitionQMin, opts)
	}
	return best
}

// evaluate builds and scores the symmetric order pair at one spread ratio.
func evaluate(m market.Market, capital, ratio float64, vol market.VolatilityMetrics, competitionQMin float64, opts Options) OptimalPlacement {
	spread := m.MaxSpread * ratio

	buyPrice := clampPrice(m.Midpoint - spread)
	noPrice := clampPrice(1 - (m.Midpoint + spread))

	// Capital splits 50/50 between the two legs; sizes are in shares.
	perSide := capital / 2
	buySize := shares(perSide, buyPrice)
	noSize := shares(perSide, noPrice)

	orders := []market.Order{
		{Price: buyPrice, Size: buySize, Side: market.SideYes, Type: market.TypeBid},
		{Price: noPrice, Size: noSize, Side: market.SideNo, Type: market.TypeBid},
	}
	qs := rewards.ScoreOrders(orders, m, opts.Scoring)
	est := rewards.EstimateReward(qs.QMin, competitionQMin+qs.QMin, m.RewardPool, capital)
	fill := EstimateFillProbability(spread, vol, opts.OrderBookDepth, opts.TimeHorizonDays)

	// Reward accrues only while the order is expected to rest unfilled; a
	// one-time transaction cost is charged in proportion to fill risk.
	expectedDaysActive := opts.TimeHorizonDays * (1 - fill.Probability)
	ev := est.DailyReward*expectedDaysActive - capital*opts.TransactionCostRate*fill.Probability

	riskFactor := 0.5 + 1.5*fill.Probability
	rar := 0.0
	if capital > 0 {
		rar = ev / (capital * riskFactor)
	}

	efficiency := 0.0
	if capital > 0 {
		efficiency = est.DailyReward / capital
	}

	return OptimalPlacement{
		BuyOrder:            PlacedOrder{Price: buyPrice, Size: buySize},
		SellOrder:           PlacedOrder{Price: noPrice, Size: noSize},
		QScore:              qs,
		ExpectedDailyReward: est.DailyReward,
		CapitalEfficiency:   efficiency,
		FillProbability:     fill.Probability,
		ExpectedValue:       ev,
		RiskAdjustedReturn:  rar,
		VolatilityScore:     vol.Score,
		SpreadRatio:         ratio,
	}
}

func shares(notional, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return notional / price
}

func clampPrice(p float64) float64 {
	if p < minOrderPrice {
		return minOrderPrice
	}
	if p > maxOrderPrice {
		return maxOrderPrice
	}
	return p
}

package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lp-optimizer-go/market"
)

func testMarket() market.Market {
	return market.Market{
		ID:         "0xdef",
		Midpoint:   0.50,
		MaxSpread:  0.03,
		MinSize:    10,
		RewardPool: 240.50,
	}
}

func series(prices ...float64) []market.PricePoint {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]market.PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = market.PricePoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Price: p}
	}
	return pts
}

// calmSeries drifts by a tenth of a cent per hour: nonzero but low volatility.
func calmSeries(n int) []market.PricePoint {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 0.50 + 0.001*float64(i%2)
	}
	return series(prices...)
}

func TestOptimize_RespectsVolatilityFloor(t *testing.T) {
	// Wild swings push the volatility score to the top band (floor 0.80).
	wild := series(0.30, 0.70, 0.30, 0.70, 0.30, 0.70)
	got := Optimize(testMarket(), 1000, wild, 5000, DefaultOptions())
	assert.GreaterOrEqual(t, got.SpreadRatio, 0.80-1e-9)
}

func TestOptimize_NeverBelowRecommendedRatio(t *testing.T) {
	histories := [][]market.PricePoint{
		nil,
		calmSeries(48),
		series(0.30, 0.70, 0.30, 0.70),
	}
	for _, h := range histories {
		vol := market.AnalyzeVolatility(h)
		got := Optimize(testMarket(), 1000, h, 5000, DefaultOptions())
		assert.GreaterOrEqual(t, got.SpreadRatio, vol.RecommendedMinSpreadRatio()-1e-9)
	}
}

func TestOptimize_SelectsHighestExpectedValue(t *testing.T) {
	m := testMarket()
	h := calmSeries(48)
	opts := DefaultOptions()
	got := Optimize(m, 1000, h, 5000, opts)

	vol := market.AnalyzeVolatility(h)
	minRatio := opts.MinSpreadRatio
	if f := vol.RecommendedMinSpreadRatio(); f > minRatio {
		minRatio = f
	}
	for i := 0; ; i++ {
		ratio := minRatio + float64(i)*opts.SpreadStep
		if ratio > opts.MaxSpreadRatio+1e-9 {
			break
		}
		c := evaluate(m, 1000, ratio, vol, 5000, opts)
		assert.GreaterOrEqual(t, got.ExpectedValue, c.ExpectedValue,
			"candidate at ratio %v beats the chosen optimum", ratio)
	}
}

func TestOptimize_FallbackWhenGridIsEmpty(t *testing.T) {
	wild := series(0.30, 0.70, 0.30, 0.70, 0.30, 0.70) // floor 0.80
	opts := DefaultOptions()
	opts.MaxSpreadRatio = 0.50 // below the floor: no candidate qualifies
	got := Optimize(testMarket(), 1000, wild, 5000, opts)
	assert.InDelta(t, 0.35, got.SpreadRatio, 1e-12)
}

func TestOptions_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultOptions(), Options{}.withDefaults(),
		"every zero field backfills to its default")

	free := Options{TransactionCostRate: -1}.withDefaults()
	assert.Equal(t, 0.0, free.TransactionCostRate, "negative rate means explicitly free fills")
}

func TestOptimize_ZeroOptionsGetDefaults(t *testing.T) {
	got := Optimize(testMarket(), 1000, calmSeries(48), 5000, Options{})
	assert.Greater(t, got.QScore.QMin, 0.0)
	assert.Greater(t, got.ExpectedDailyReward, 0.0)

	// The defaulted transaction cost must show up in the expected value: a
	// zero-value Options and DefaultOptions() choose the same placement.
	want := Optimize(testMarket(), 1000, calmSeries(48), 5000, DefaultOptions())
	assert.Equal(t, want, got)
}

func TestEvaluate_SplitsCapitalEvenly(t *testing.T) {
	m := testMarket()
	vol := market.AnalyzeVolatility(calmSeries(48))
	c := evaluate(m, 1000, 0.5, vol, 5000, DefaultOptions())

	require.Greater(t, c.BuyOrder.Size, 0.0)
	require.Greater(t, c.SellOrder.Size, 0.0)
	assert.InDelta(t, 500.0, c.BuyOrder.Price*c.BuyOrder.Size, 1e-9)
	assert.InDelta(t, 500.0, c.SellOrder.Price*c.SellOrder.Size, 1e-9)
}

func TestEvaluate_SymmetricPairPrices(t *testing.T) {
	m := testMarket()
	vol := market.AnalyzeVolatility(calmSeries(48))
	c := evaluate(m, 1000, 0.5, vol, 5000, DefaultOptions())

	spread := m.MaxSpread * 0.5
	assert.InDelta(t, m.Midpoint-spread, c.BuyOrder.Price, 1e-12)
	assert.InDelta(t, 1-(m.Midpoint+spread), c.SellOrder.Price, 1e-12)
}

func TestEvaluate_ClampsPricesToBounds(t *testing.T) {
	m := testMarket()
	m.Midpoint = 0.02
	m.MaxSpread = 0.05
	vol := market.AnalyzeVolatility(calmSeries(48))
	c := evaluate(m, 1000, 0.8, vol, 5000, DefaultOptions())

	assert.GreaterOrEqual(t, c.BuyOrder.Price, 0.01)
	assert.LessOrEqual(t, c.SellOrder.Price, 0.99)
}

func TestEvaluate_ExpectedValueComposition(t *testing.T) {
	m := testMarket()
	opts := DefaultOptions()
	vol := market.AnalyzeVolatility(calmSeries(48))
	c := evaluate(m, 1000, 0.5, vol, 5000, opts)

	daysActive := opts.TimeHorizonDays * (1 - c.FillProbability)
	wantEV := c.ExpectedDailyReward*daysActive - 1000*opts.TransactionCostRate*c.FillProbability
	require.InDelta(t, wantEV, c.ExpectedValue, 1e-9)

	wantRAR := wantEV / (1000 * (0.5 + 1.5*c.FillProbability))
	assert.InDelta(t, wantRAR, c.RiskAdjustedReturn, 1e-9)
}

func TestOptimize_RiskierFillDiscountsReturn(t *testing.T) {
	// Same expected value at higher fill probability must yield a lower
	// risk-adjusted return.
	ev := 100.0
	capital := 1000.0
	rarAt := func(p float64) float64 { return ev / (capital * (0.5 + 1.5*p)) }
	assert.Greater(t, rarAt(0.1), rarAt(0.5))
}

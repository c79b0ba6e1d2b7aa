package market

import (
	"math"
	"testing"
	"time"
)

func hourlySeries(prices ...float64) []PricePoint {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	pts := make([]PricePoint, len(prices))
	for i, p := range prices {
		pts[i] = PricePoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Price: p}
	}
	return pts
}

func TestAnalyzeVolatility_InsufficientData(t *testing.T) {
	for _, history := range [][]PricePoint{nil, hourlySeries(0.5)} {
		m := AnalyzeVolatility(history)
		if m.HourlyStdDev != 0 || m.DailyStdDev != 0 || m.Score != 0 {
			t.Errorf("expected all-zero metrics for %d points, got %+v", len(history), m)
		}
	}
}

func TestAnalyzeVolatility_ConstantPrices(t *testing.T) {
	m := AnalyzeVolatility(hourlySeries(0.5, 0.5, 0.5, 0.5, 0.5))
	if m.HourlyStdDev != 0 {
		t.Errorf("expected zero std dev for constant prices, got %f", m.HourlyStdDev)
	}
	if m.Score != 0 {
		t.Errorf("expected zero score for constant prices, got %f", m.Score)
	}
}

func TestAnalyzeVolatility_KnownSeries(t *testing.T) {
	m := AnalyzeVolatility(hourlySeries(0.50, 0.52, 0.49, 0.53))

	// Changes are +0.02, -0.03, +0.04: population std dev sqrt(0.0026/3).
	want := math.Sqrt(0.0026 / 3)
	if math.Abs(m.HourlyStdDev-want) > 1e-12 {
		t.Errorf("hourly std dev: want %f, got %f", want, m.HourlyStdDev)
	}
	if m.MaxHourlySwing != 0.04 {
		t.Errorf("max hourly swing: want 0.04, got %f", m.MaxHourlySwing)
	}
	if m.DailyStdDev != 0 || m.MaxDailySwing != 0 {
		t.Errorf("series shorter than a day should have zero daily stats, got %+v", m)
	}

	// 60%*min(sigma/0.05,1) + 20%*min(0.04/0.10,1), daily term zero.
	wantScore := 100 * (0.6*(want/0.05) + 0.2*(0.04/0.10))
	if math.Abs(m.Score-wantScore) > 1e-9 {
		t.Errorf("score: want %f, got %f", wantScore, m.Score)
	}
}

func TestAnalyzeVolatility_DailyStride(t *testing.T) {
	prices := make([]float64, 49)
	for i := range prices {
		if i < 24 {
			prices[i] = 0.50
		} else {
			prices[i] = 0.60
		}
	}
	m := AnalyzeVolatility(hourlySeries(prices...))
	if m.MaxDailySwing != 0.1 {
		t.Errorf("max daily swing: want 0.1, got %f", m.MaxDailySwing)
	}
	if m.DailyStdDev <= 0 {
		t.Errorf("expected nonzero daily std dev, got %f", m.DailyStdDev)
	}
}

func TestAnalyzeVolatility_ScoreComponentsAreCapped(t *testing.T) {
	// A single huge jump saturates the swing component at its 20% weight
	// instead of blowing past it.
	m := AnalyzeVolatility(hourlySeries(0.10, 0.90, 0.10, 0.90, 0.10))
	if m.Score > 100 {
		t.Errorf("score must stay within [0,100], got %f", m.Score)
	}
}

func TestRecommendedMinSpreadRatio_Bands(t *testing.T) {
	cases := []struct {
		score float64
		want  float64
	}{
		{0, 0.25},
		{19.99, 0.25},
		{20, 0.35},
		{39.99, 0.35},
		{40, 0.45},
		{59.99, 0.45},
		{60, 0.60},
		{79.99, 0.60},
		{80, 0.80},
		{100, 0.80},
	}
	for _, tc := range cases {
		m := VolatilityMetrics{Score: tc.score}
		if got := m.RecommendedMinSpreadRatio(); got != tc.want {
			t.Errorf("score %v: want ratio %v, got %v", tc.score, tc.want, got)
		}
	}
}

func TestRecommendedMinSpreadRatio_Monotonic(t *testing.T) {
	prev := 0.0
	for score := 0.0; score <= 100; score += 5 {
		m := VolatilityMetrics{Score: score}
		r := m.RecommendedMinSpreadRatio()
		if r < prev {
			t.Fatalf("floor must widen with volatility: score %v gave %v after %v", score, r, prev)
		}
		prev = r
	}
}

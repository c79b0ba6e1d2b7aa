package market

import "math"

// VolatilityMetrics summarizes a historical price series. A zero value means
// either a genuinely flat market or insufficient data; callers that need to
// distinguish the two must check len(History).
type VolatilityMetrics struct {
	HourlyStdDev   float64
	DailyStdDev    float64
	MaxHourlySwing float64
	MaxDailySwing  float64
	Score          float64 // 0-100 blended volatility score
	History        []PricePoint
}

// VolatilityWeights are the blend weights and normalization caps for the
// 0-100 score. They are passed explicitly so alternate calibrations can be
// exercised in tests.
type VolatilityWeights struct {
	HourlyStdDevWeight float64
	DailyStdDevWeight  float64
	MaxSwingWeight     float64

	// Each component is divided by its norm and capped at 1 before
	// weighting, so one extreme outlier cannot saturate the score past its
	// weight's contribution.
	HourlyStdDevNorm float64
	DailyStdDevNorm  float64
	MaxSwingNorm     float64
}

// DefaultVolatilityWeights returns the calibration used against typical
// prediction-market price ranges (prices in 0-1).
func DefaultVolatilityWeights() VolatilityWeights {
	return VolatilityWeights{
		HourlyStdDevWeight: 0.60,
		DailyStdDevWeight:  0.20,
		MaxSwingWeight:     0.20,
		HourlyStdDevNorm:   0.05,
		DailyStdDevNorm:    0.10,
		MaxSwingNorm:       0.10,
	}
}

// hoursPerDay is the stride between samples used for the daily change series;
// the input series is expected at hourly resolution.
const hoursPerDay = 24

// AnalyzeVolatility computes VolatilityMetrics for an hourly-resolution price
// series using the default weights. Fewer than 2 points yields an all-zero
// result rather than an error; the fill-probability model has a conservative
// fallback for that case.
func AnalyzeVolatility(history []PricePoint) VolatilityMetrics {
	return AnalyzeVolatilityWith(history, DefaultVolatilityWeights())
}

// AnalyzeVolatilityWith is AnalyzeVolatility with explicit weights.
func AnalyzeVolatilityWith(history []PricePoint, w VolatilityWeights) VolatilityMetrics {
	if len(history) < 2 {
		return VolatilityMetrics{History: history}
	}

	hourly := changes(history, 1)
	daily := changes(history, hoursPerDay)

	m := VolatilityMetrics{
		HourlyStdDev:   populationStdDev(hourly),
		DailyStdDev:    populationStdDev(daily),
		MaxHourlySwing: maxAbs(hourly),
		MaxDailySwing:  maxAbs(daily),
		History:        history,
	}
	m.Score = volatilityScore(m, w)
	return m
}

// RecommendedMinSpreadRatio returns the spread-ratio floor (as a fraction of
// the market's max qualifying spread) implied by the volatility score. The
// floor widens monotonically in discrete bands: in volatile markets orders
// resting near the midpoint are likely to be crossed.
func (m VolatilityMetrics) RecommendedMinSpreadRatio() float64 {
	switch {
	case m.Score < 20:
		return 0.25
	case m.Score < 40:
		return 0.35
	case m.Score < 60:
		return 0.45
	case m.Score < 80:
		return 0.60
	default:
		return 0.80
	}
}

func volatilityScore(m VolatilityMetrics, w VolatilityWeights) float64 {
	score := 100 * (w.HourlyStdDevWeight*capped(m.HourlyStdDev, w.HourlyStdDevNorm) +
		w.DailyStdDevWeight*capped(m.DailyStdDev, w.DailyStdDevNorm) +
		w.MaxSwingWeight*capped(m.MaxHourlySwing, w.MaxSwingNorm))
	if score > 100 {
		return 100
	}
	return score
}

func capped(v, norm float64) float64 {
	if norm <= 0 {
		return 0
	}
	r := v / norm
	if r > 1 {
		return 1
	}
	return r
}

// changes returns price differences at the given stride.
func changes(history []PricePoint, stride int) []float64 {
	if len(history) <= stride {
		return nil
	}
	out := make([]float64, 0, len(history)-stride)
	for i := stride; i < len(history); i++ {
		out = append(out, history[i].Price-history[i-stride].Price)
	}
	return out
}

// populationStdDev returns the population standard deviation, 0 if fewer than
// 2 values.
func populationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func maxAbs(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

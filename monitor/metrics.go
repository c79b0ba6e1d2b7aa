// Package monitor exposes Prometheus metrics for the scan loop and the
// optimizer.
package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "scans_total",
		Help:      "Completed multi-market scan cycles.",
	})

	MarketsOptimized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "markets_optimized_total",
		Help:      "Markets run through the spread optimizer.",
	})

	OptimizeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "errors_total",
		Help:      "Failures during a scan, by stage.",
	}, []string{"stage"})

	MarketsEligible = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "markets_eligible",
		Help:      "Reward-eligible markets seen in the latest scan.",
	})

	BestExpectedValue = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "best_expected_value_usdc",
		Help:      "Expected value of the top-ranked placement in the latest scan.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "lp",
		Subsystem: "optimizer",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of a full scan cycle.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)

// RecordScan updates the per-cycle gauges after a completed scan.
func RecordScan(eligible int, bestEV, durationSeconds float64) {
	ScansTotal.Inc()
	MarketsEligible.Set(float64(eligible))
	BestExpectedValue.Set(bestEV)
	ScanDuration.Observe(durationSeconds)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr in a background goroutine. Empty addr
// disables the endpoint.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}

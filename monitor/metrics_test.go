package monitor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordScan(t *testing.T) {
	MarketsEligible.Set(0)
	BestExpectedValue.Set(0)

	RecordScan(12, 42.5, 1.2)

	if got := testutil.ToFloat64(MarketsEligible); got != 12 {
		t.Errorf("MarketsEligible: want 12, got %f", got)
	}
	if got := testutil.ToFloat64(BestExpectedValue); got != 42.5 {
		t.Errorf("BestExpectedValue: want 42.5, got %f", got)
	}
}

func TestOptimizeErrorsByStage(t *testing.T) {
	OptimizeErrors.Reset()
	OptimizeErrors.WithLabelValues("history").Inc()
	OptimizeErrors.WithLabelValues("history").Inc()
	OptimizeErrors.WithLabelValues("markets").Inc()

	if got := testutil.ToFloat64(OptimizeErrors.WithLabelValues("history")); got != 2 {
		t.Errorf("errors[history]: want 2, got %f", got)
	}
	if got := testutil.ToFloat64(OptimizeErrors.WithLabelValues("markets")); got != 1 {
		t.Errorf("errors[markets]: want 1, got %f", got)
	}
}

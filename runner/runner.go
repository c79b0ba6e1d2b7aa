// Package runner orchestrates one optimizer invocation per reward-eligible
// market and ranks the results. Invocations share no mutable state, so they
// run task-parallel.
package runner

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lp-optimizer-go/market"
	"lp-optimizer-go/monitor"
	"lp-optimizer-go/strategy"
)

// MarketDataProvider supplies market snapshots and price series. The gateway
// client satisfies it; tests substitute fakes.
type MarketDataProvider interface {
	ListRewardMarkets(ctx context.Context, limit int) ([]market.Market, error)
	PriceHistory(ctx context.Context, marketID string, lookback time.Duration) ([]market.PricePoint, error)
	// MarketLiquidity returns resting-liquidity figures keyed by market ID,
	// best effort: markets with no data are simply absent.
	MarketLiquidity(ctx context.Context, marketIDs []string) map[string]float64
}

// PlacementStore persists scan output. Optional.
type PlacementStore interface {
	SaveMarkets(ctx context.Context, markets []market.Market) error
	SavePlacement(ctx context.Context, marketID string, p strategy.OptimalPlacement) (string, error)
}

// Config controls a Runner.
type Config struct {
	Capital         float64 // capital assumed per market
	MaxMarkets      int
	Concurrency     int
	Lookback        time.Duration // price history window
	CompetitionQMin float64       // assumed competing liquidity per market
	Options         strategy.Options
}

// Runner scans markets and produces ranked placements.
type Runner struct {
	provider MarketDataProvider
	store    PlacementStore // may be nil
	cfg      Config
	log      *zap.Logger
}

// Result pairs a market with its optimal placement.
type Result struct {
	Market    market.Market
	Placement strategy.OptimalPlacement
}

// New creates a Runner. store may be nil to skip persistence.
func New(provider MarketDataProvider, store PlacementStore, cfg Config, log *zap.Logger) *Runner {
	if cfg.MaxMarkets <= 0 {
		cfg.MaxMarkets = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 7 * 24 * time.Hour
	}
	return &Runner{
		provider: provider,
		store:    store,
		cfg:      cfg,
		log:      log.Named("runner"),
	}
}

// ScanOnce lists eligible markets, optimizes each concurrently, and returns
// the results ranked by expected value (best first). A market whose history
// fetch fails is still optimized on an empty series: the fill model degrades
// to its conservative fallback instead of dropping the market.
func (r *Runner) ScanOnce(ctx context.Context) ([]Result, error) {
	started := time.Now()

	markets, err := r.provider.ListRewardMarkets(ctx, r.cfg.MaxMarkets)
	if err != nil {
		monitor.OptimizeErrors.WithLabelValues("markets").Inc()
		return nil, err
	}
	if len(markets) == 0 {
		r.log.Info("no reward-eligible markets")
		return nil, nil
	}

	ids := make([]string, len(markets))
	for i, m := range markets {
		ids[i] = m.ID
	}
	liquidity := r.provider.MarketLiquidity(ctx, ids)

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(markets))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, m := range markets {
		m := m
		g.Go(func() error {
			history, err := r.provider.PriceHistory(gctx, m.ID, r.cfg.Lookback)
			if err != nil {
				monitor.OptimizeErrors.WithLabelValues("history").Inc()
				r.log.Warn("price history unavailable",
					zap.String("market", m.ID), zap.Error(err))
				history = nil
			}
			// Measured liquidity replaces the configured depth assumption.
			opts := r.cfg.Options
			if depth, ok := liquidity[m.ID]; ok {
				opts.OrderBookDepth = depth
			}
			placement := strategy.Optimize(m, r.cfg.Capital, history, r.cfg.CompetitionQMin, opts)
			monitor.MarketsOptimized.Inc()

			mu.Lock()
			results = append(results, Result{Market: m, Placement: placement})
			mu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Placement.ExpectedValue > results[j].Placement.ExpectedValue
	})

	bestEV := 0.0
	if len(results) > 0 {
		bestEV = results[0].Placement.ExpectedValue
	}
	monitor.RecordScan(len(markets), bestEV, time.Since(started).Seconds())
	r.log.Info("scan complete",
		zap.Int("markets", len(markets)),
		zap.Float64("best_ev", bestEV),
		zap.Duration("took", time.Since(started)))

	r.persist(ctx, markets, results)
	return results, nil
}

// persist is best effort: storage failures are logged, not fatal to a scan.
func (r *Runner) persist(ctx context.Context, markets []market.Market, results []Result) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveMarkets(ctx, markets); err != nil {
		monitor.OptimizeErrors.WithLabelValues("storage").Inc()
		r.log.Warn("persist markets failed", zap.Error(err))
	}
	for _, res := range results {
		if _, err := r.store.SavePlacement(ctx, res.Market.ID, res.Placement); err != nil {
			monitor.OptimizeErrors.WithLabelValues("storage").Inc()
			r.log.Warn("persist placement failed",
				zap.String("market", res.Market.ID), zap.Error(err))
		}
	}
}

// Command optimizerd runs the scan loop as a long-lived daemon: periodic
// multi-market scans, Prometheus metrics, config hot reload, and systemd
// readiness/watchdog notifications.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lp-optimizer-go/config"
	"lp-optimizer-go/gateway"
	"lp-optimizer-go/logger"
	"lp-optimizer-go/market"
	"lp-optimizer-go/monitor"
	"lp-optimizer-go/rewards"
	"lp-optimizer-go/runner"
	"lp-optimizer-go/storage"
	"lp-optimizer-go/strategy"
)

const configReloadCooldown = 2 * time.Second

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	monitor.Serve(cfg.Metrics.Addr)

	client := gateway.NewClient(gateway.Options{
		CLOBBase:   cfg.API.CLOBBase,
		GammaBase:  cfg.API.GammaBase,
		Timeout:    time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RatePerSec: cfg.API.RatePerSec,
		Burst:      cfg.API.Burst,
	}, zl)

	var store runner.PlacementStore
	if cfg.Storage.DSN != "" {
		db, err := storage.Open(cfg.Storage.DSN)
		if err != nil {
			zl.Fatal("open storage", zap.Error(err))
		}
		defer db.Close()
		store = db
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &daemonState{
		cfg:    cfg,
		client: client,
		store:  store,
		feed:   gateway.NewFeed(cfg.API.WSBase, zl),
		log:    zl,
	}

	watcher, err := config.NewWatcher(*cfgPath, configReloadCooldown)
	if err != nil {
		zl.Warn("config watcher unavailable, hot reload disabled", zap.Error(err))
	} else {
		go watcher.Start(ctx,
			func(next config.AppConfig) {
				d.swapConfig(next)
				zl.Info("config reloaded")
			},
			func(err error) {
				zl.Warn("config reload rejected", zap.Error(err))
			})
	}

	sd.SdNotify(false, sd.SdNotifyReady)
	go watchdogLoop(ctx)

	d.run(ctx)
	sd.SdNotify(false, sd.SdNotifyStopping)
	zl.Info("shutdown complete")
}

// daemonState holds the pieces a scan cycle needs. The config can be swapped
// by the hot-reload watcher between cycles.
type daemonState struct {
	mu  sync.Mutex
	cfg config.AppConfig

	client *gateway.Client
	store  runner.PlacementStore
	feed   *gateway.Feed
	log    *zap.Logger

	feedCancel context.CancelFunc
	feedIDs    []string
}

func (d *daemonState) swapConfig(next config.AppConfig) {
	d.mu.Lock()
	d.cfg = next
	d.mu.Unlock()
}

func (d *daemonState) snapshot() config.AppConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// run executes scan cycles until ctx is cancelled. The first scan happens
// immediately; the interval is re-read each cycle so reloads take effect.
func (d *daemonState) run(ctx context.Context) {
	for {
		cfg := d.snapshot()
		d.scanCycle(ctx, cfg)

		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.ScanInterval()):
		}
	}
}

func (d *daemonState) scanCycle(ctx context.Context, cfg config.AppConfig) {
	provider := &liveProvider{client: d.client, feed: d.feed}
	r := runner.New(provider, d.store, runnerConfig(cfg), d.log)

	results, err := r.ScanOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			d.log.Error("scan failed", zap.Error(err))
		}
		return
	}
	d.resubscribe(ctx, topMarketIDs(results, 10))
}

// resubscribe points the websocket feed at the current top markets so the next
// scan sees fresher series than REST alone provides. Reconnecting only when
// the set changes keeps the connection stable across quiet cycles.
func (d *daemonState) resubscribe(ctx context.Context, ids []string) {
	if len(ids) == 0 || slicesEqual(ids, d.feedIDs) {
		return
	}
	d.feedIDs = ids
	if d.feedCancel != nil {
		d.feedCancel()
	}
	feedCtx, cancel := context.WithCancel(ctx)
	d.feedCancel = cancel
	go func() {
		if err := d.feed.Run(feedCtx, ids); err != nil && feedCtx.Err() == nil {
			d.log.Warn("feed stopped", zap.Error(err))
		}
	}()
}

func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func topMarketIDs(results []runner.Result, n int) []string {
	if n > len(results) {
		n = len(results)
	}
	ids := make([]string, 0, n)
	for _, res := range results[:n] {
		ids = append(ids, res.Market.ID)
	}
	return ids
}

// liveProvider serves REST market listings and splices websocket price points
// collected since the last REST sample onto the historical series.
type liveProvider struct {
	client *gateway.Client
	feed   *gateway.Feed
}

func (p *liveProvider) ListRewardMarkets(ctx context.Context, limit int) ([]market.Market, error) {
	return p.client.ListRewardMarkets(ctx, limit)
}

func (p *liveProvider) MarketLiquidity(ctx context.Context, marketIDs []string) map[string]float64 {
	return p.client.MarketLiquidity(ctx, marketIDs)
}

func (p *liveProvider) PriceHistory(ctx context.Context, marketID string, lookback time.Duration) ([]market.PricePoint, error) {
	history, err := p.client.PriceHistory(ctx, marketID, lookback)
	if err != nil {
		return nil, err
	}
	var lastSeen time.Time
	if len(history) > 0 {
		lastSeen = history[len(history)-1].Timestamp
	}
	for _, pt := range p.feed.History(marketID) {
		if pt.Timestamp.After(lastSeen) {
			history = append(history, pt)
		}
	}
	return history, nil
}

// runnerConfig maps the YAML config onto the runner and optimizer options.
func runnerConfig(cfg config.AppConfig) runner.Config {
	scoring := rewards.DefaultScoringParams()
	if cfg.Optimizer.SingleSidedPenalty > 0 {
		scoring.SingleSidedPenalty = cfg.Optimizer.SingleSidedPenalty
	}
	return runner.Config{
		Capital:     cfg.Scanner.CapitalUSDC,
		MaxMarkets:  cfg.Scanner.MaxMarkets,
		Concurrency: cfg.Scanner.Concurrency,
		Lookback:    time.Duration(cfg.Scanner.LookbackHours) * time.Hour,
		Options: strategy.Options{
			TimeHorizonDays:     cfg.Optimizer.TimeHorizonDays,
			MinSpreadRatio:      cfg.Optimizer.MinSpreadRatio,
			MaxSpreadRatio:      cfg.Optimizer.MaxSpreadRatio,
			SpreadStep:          cfg.Optimizer.SpreadStep,
			TransactionCostRate: cfg.Optimizer.TransactionCostRate,
			OrderBookDepth:      cfg.Optimizer.OrderBookDepth,
			Scoring:             scoring,
		},
	}
}

// watchdogLoop pets the systemd watchdog at half the configured interval when
// WatchdogSec is set on the unit; it is a no-op otherwise.
func watchdogLoop(ctx context.Context) {
	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sd.SdNotify(false, sd.SdNotifyWatchdog)
		}
	}
}

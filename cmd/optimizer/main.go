// Command optimizer runs one scan over reward-eligible markets and prints the
// recommended placements, best expected value first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"lp-optimizer-go/config"
	"lp-optimizer-go/gateway"
	"lp-optimizer-go/logger"
	"lp-optimizer-go/rewards"
	"lp-optimizer-go/runner"
	"lp-optimizer-go/storage"
	"lp-optimizer-go/strategy"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	capital := flag.Float64("capital", 0, "capital per market in USDC (overrides config)")
	maxMarkets := flag.Int("markets", 0, "max markets to scan (overrides config)")
	top := flag.Int("top", 15, "rows to print")
	flag.Parse()

	// .env is optional; real config lives in YAML and the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnvOverrides(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *capital > 0 {
		cfg.Scanner.CapitalUSDC = *capital
	}
	if *maxMarkets > 0 {
		cfg.Scanner.MaxMarkets = *maxMarkets
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

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

	r := runner.New(client, store, runnerConfig(cfg), zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := r.ScanOnce(ctx)
	if err != nil {
		zl.Fatal("scan failed", zap.Error(err))
	}
	if len(results) == 0 {
		fmt.Println("no reward-eligible markets found")
		return
	}
	printReport(results, *top, cfg.Scanner.CapitalUSDC)
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

func printReport(results []runner.Result, top int, capital float64) {
	if top > len(results) {
		top = len(results)
	}
	fmt.Printf("\nTop %d of %d markets (capital %.0f USDC per market)\n\n", top, len(results), capital)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("#", "Market", "Mid", "Spread%", "QMin", "Rwd/day", "Fill%", "EV", "RAR", "Vol")
	for i, res := range results[:top] {
		p := res.Placement
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(res.Market.Question, 40),
			fmt.Sprintf("%.3f", res.Market.Midpoint),
			fmt.Sprintf("%.0f", p.SpreadRatio*100),
			fmt.Sprintf("%.1f", p.QScore.QMin),
			fmt.Sprintf("%.2f", p.ExpectedDailyReward),
			fmt.Sprintf("%.0f", p.FillProbability*100),
			fmt.Sprintf("%.2f", p.ExpectedValue),
			fmt.Sprintf("%.4f", p.RiskAdjustedReturn),
			fmt.Sprintf("%.0f", p.VolatilityScore),
		)
	}
	table.Render()

	best := results[0]
	fmt.Printf("\nBest placement: %s\n", truncate(best.Market.Question, 60))
	fmt.Printf("  buy YES %.2f @ %.3f, buy NO %.2f @ %.3f\n",
		best.Placement.BuyOrder.Size, best.Placement.BuyOrder.Price,
		best.Placement.SellOrder.Size, best.Placement.SellOrder.Price)
	fmt.Printf("  expected value over horizon: %.2f USDC\n", best.Placement.ExpectedValue)
}

// truncate shortens s to at most n display runes; questions can contain
// multi-byte characters, so byte slicing would corrupt them.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Package gateway is the market-data provider: a rate-limited HTTP client for
// the venue's CLOB and Gamma APIs plus a websocket midpoint feed. It supplies
// market snapshots and historical price series; order signing and submission
// live elsewhere.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Options configure the client; zero values use production defaults.
type Options struct {
	CLOBBase   string
	GammaBase  string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

// Client is the venue HTTP client with per-endpoint rate limiting and
// retrying GETs.
type Client struct {
	http         *http.Client
	clobBase     string
	gammaBase    string
	clobLimiter  *rate.Limiter
	gammaLimiter *rate.Limiter
	log          *zap.Logger
}

// NewClient creates a Client. log must not be nil.
func NewClient(opts Options, log *zap.Logger) *Client {
	if opts.CLOBBase == "" {
		opts.CLOBBase = defaultCLOBBase
	}
	if opts.GammaBase == "" {
		opts.GammaBase = defaultGammaBase
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	return &Client{
		http:         &http.Client{Timeout: opts.Timeout},
		clobBase:     opts.CLOBBase,
		gammaBase:    opts.GammaBase,
		clobLimiter:  rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		gammaLimiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		log:          log.Named("gateway"),
	}
}

// get performs a GET with rate limiting, retries with exponential backoff on
// transport errors, 429s, and 5xx responses, and decodes JSON into out.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("gateway: rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("gateway: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("gateway: request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("gateway: status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.log.Warn("retrying request",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1))
			c.sleep(ctx, attempt)
			continue
		case resp.StatusCode >= 400:
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("gateway: client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("gateway: decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("gateway: exhausted %d retries", maxRetries)
}

// sleep waits with exponential backoff, respecting the context.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

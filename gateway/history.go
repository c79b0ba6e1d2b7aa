package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"lp-optimizer-go/market"
)

type priceHistoryResponse struct {
	History []pricePointRaw `json:"history"`
}

type pricePointRaw struct {
	T int64   `json:"t"` // unix seconds
	P float64 `json:"p"`
}

// PriceHistory fetches the hourly price series for a market over the lookback
// window. Per the provider contract it returns the best-effort series
// available, empty when the venue has no data, and only errors on transport or
// decode failures the caller may want to retry.
func (c *Client) PriceHistory(ctx context.Context, marketID string, lookback time.Duration) ([]market.PricePoint, error) {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	q := url.Values{}
	q.Set("market", marketID)
	q.Set("startTs", fmt.Sprintf("%d", start.Unix()))
	q.Set("endTs", fmt.Sprintf("%d", end.Unix()))
	q.Set("fidelity", "60") // one sample per hour

	var resp priceHistoryResponse
	u := c.clobBase + "/prices-history?" + q.Encode()
	if err := c.get(ctx, c.clobLimiter, u, &resp); err != nil {
		return nil, fmt.Errorf("gateway: price history %s: %w", marketID, err)
	}
	if len(resp.History) == 0 {
		// Ambiguous with a genuinely flat market downstream; log so
		// operators can tell "no data" apart from "calm".
		c.log.Debug("empty price history", zap.String("market", marketID))
		return nil, nil
	}

	points := make([]market.PricePoint, 0, len(resp.History))
	for _, raw := range resp.History {
		if raw.P <= 0 || raw.P >= 1 {
			continue
		}
		points = append(points, market.PricePoint{
			Timestamp: time.Unix(raw.T, 0).UTC(),
			Price:     raw.P,
		})
	}
	return points, nil
}

package gateway

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"lp-optimizer-go/market"
)

// Raw DTOs from the CLOB sampling-markets endpoint. Conversion to the domain
// type happens in mapMarket.

type samplingMarketsResponse struct {
	Limit      int              `json:"limit"`
	Count      int              `json:"count"`
	NextCursor string           `json:"next_cursor"`
	Data       []samplingMarket `json:"data"`
}

type samplingMarket struct {
	ConditionID string      `json:"condition_id"`
	Question    string      `json:"question"`
	Tokens      []clobToken `json:"tokens"`
	Rewards     clobRewards `json:"rewards"`
	Active      bool        `json:"active"`
	Closed      bool        `json:"closed"`
}

type clobToken struct {
	TokenID string  `json:"token_id"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
}

type clobRewards struct {
	Rates     []rewardRate `json:"rates"`
	MinSize   float64      `json:"min_size"`
	MaxSpread float64      `json:"max_spread"`
}

type rewardRate struct {
	AssetAddress     string  `json:"asset_address"`
	RewardsDailyRate float64 `json:"rewards_daily_rate"`
}

// endOfCursor marks the last page of the sampling-markets pagination.
const endOfCursor = "LTE="

// ListRewardMarkets pages through the CLOB's reward-eligible markets and
// returns up to limit of them as domain snapshots. Markets that are closed,
// inactive, or missing a usable midpoint are skipped.
func (c *Client) ListRewardMarkets(ctx context.Context, limit int) ([]market.Market, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []market.Market
	cursor := ""
	for {
		u := c.clobBase + "/sampling-markets"
		if cursor != "" {
			u += "?next_cursor=" + url.QueryEscape(cursor)
		}
		var page samplingMarketsResponse
		if err := c.get(ctx, c.clobLimiter, u, &page); err != nil {
			return nil, fmt.Errorf("gateway: list reward markets: %w", err)
		}
		for _, raw := range page.Data {
			m, ok := mapMarket(raw)
			if !ok {
				continue
			}
			out = append(out, m)
			if len(out) >= limit {
				return out, nil
			}
		}
		if page.NextCursor == "" || page.NextCursor == endOfCursor {
			break
		}
		cursor = page.NextCursor
	}
	c.log.Debug("reward markets listed", zap.Int("count", len(out)))
	return out, nil
}

// mapMarket converts a raw sampling market into the domain snapshot. The
// midpoint is the YES token's last mid price.
func mapMarket(raw samplingMarket) (market.Market, bool) {
	if raw.Closed || !raw.Active {
		return market.Market{}, false
	}
	mid := 0.0
	for _, t := range raw.Tokens {
		if t.Outcome == "Yes" {
			mid = t.Price
			break
		}
	}
	if mid <= 0 || mid >= 1 {
		return market.Market{}, false
	}

	pool := 0.0
	for _, r := range raw.Rewards.Rates {
		pool += r.RewardsDailyRate
	}
	m := market.Market{
		ID:         raw.ConditionID,
		Question:   raw.Question,
		Midpoint:   mid,
		MaxSpread:  raw.Rewards.MaxSpread,
		MinSize:    raw.Rewards.MinSize,
		RewardPool: pool,
	}
	if !m.HasRewards() {
		return market.Market{}, false
	}
	return m, true
}

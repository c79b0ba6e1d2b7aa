package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// gammaBatchMax is the most condition IDs one Gamma /markets query accepts.
const gammaBatchMax = 20

// gammaMarket is the Gamma metadata for one market. Gamma serves some numeric
// fields as JSON strings, hence json.Number.
type gammaMarket struct {
	ConditionID string      `json:"conditionId"`
	Liquidity   json.Number `json:"liquidity"`
	Volume24h   json.Number `json:"volume24hr"`
	Active      bool        `json:"active"`
	Closed      bool        `json:"closed"`
}

// MarketLiquidity fetches resting-liquidity figures from the Gamma API for the
// given condition IDs, batched per request. Best effort: a failed batch is
// logged and skipped, and markets Gamma has no data for are absent from the
// result.
func (c *Client) MarketLiquidity(ctx context.Context, conditionIDs []string) map[string]float64 {
	out := make(map[string]float64, len(conditionIDs))
	for start := 0; start < len(conditionIDs); start += gammaBatchMax {
		end := start + gammaBatchMax
		if end > len(conditionIDs) {
			end = len(conditionIDs)
		}
		batch := conditionIDs[start:end]

		u := fmt.Sprintf("%s/markets?condition_ids=%s&limit=%d",
			c.gammaBase, strings.Join(batch, ","), gammaBatchMax)
		var resp []gammaMarket
		if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
			c.log.Debug("gamma liquidity batch failed",
				zap.Int("offset", start), zap.Error(err))
			continue
		}
		for _, gm := range resp {
			if liq, err := gm.Liquidity.Float64(); err == nil && liq > 0 {
				out[gm.ConditionID] = liq
			}
		}
	}
	return out
}

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lp-optimizer-go/market"
	"lp-optimizer-go/rewards"
	"lp-optimizer-go/strategy"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlacement() strategy.OptimalPlacement {
	return strategy.OptimalPlacement{
		BuyOrder:            strategy.PlacedOrder{Price: 0.485, Size: 1030.9},
		SellOrder:           strategy.PlacedOrder{Price: 0.485, Size: 1030.9},
		QScore:              rewards.QScore{QOne: 55.5, QTwo: 55.5, QMin: 55.5},
		ExpectedDailyReward: 2.63,
		FillProbability:     0.22,
		ExpectedValue:       55.1,
		RiskAdjustedReturn:  0.066,
		VolatilityScore:     14.2,
		SpreadRatio:         0.50,
	}
}

func TestStore_SaveAndReadPlacements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SavePlacement(ctx, "0xaaa", samplePlacement())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = s.SavePlacement(ctx, "0xbbb", samplePlacement())
	require.NoError(t, err)

	recs, err := s.RecentPlacements(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var markets []string
	for _, r := range recs {
		markets = append(markets, r.MarketID)
		assert.Equal(t, 0.50, r.Placement.SpreadRatio)
		assert.InDelta(t, 55.5, r.Placement.QScore.QMin, 1e-9)
	}
	assert.ElementsMatch(t, []string{"0xaaa", "0xbbb"}, markets)
}

func TestStore_RecentPlacementsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.SavePlacement(ctx, "0xaaa", samplePlacement())
		require.NoError(t, err)
	}
	recs, err := s.RecentPlacements(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestStore_SaveMarketsUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := market.Market{ID: "0xaaa", Question: "q", Midpoint: 0.5, MaxSpread: 0.03, MinSize: 100, RewardPool: 120}
	require.NoError(t, s.SaveMarkets(ctx, []market.Market{m}))

	m.Midpoint = 0.55
	require.NoError(t, s.SaveMarkets(ctx, []market.Market{m}))

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM markets`).Scan(&count))
	assert.Equal(t, 1, count, "same market ID should update, not duplicate")

	var mid float64
	require.NoError(t, s.db.QueryRow(`SELECT midpoint FROM markets WHERE id = ?`, m.ID).Scan(&mid))
	assert.Equal(t, 0.55, mid)
}

func TestStore_SaveMarketsEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.SaveMarkets(context.Background(), nil))
}

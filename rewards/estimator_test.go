package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateReward_ShareOfPool(t *testing.T) {
	est := EstimateReward(100, 1000, 500, 0)
	assert.InDelta(t, 0.1, est.UserShare, 1e-12)
	assert.InDelta(t, 50.0, est.DailyReward, 1e-12)
	assert.InDelta(t, 1500.0, est.MonthlyReward, 1e-12)
	assert.Nil(t, est.AnnualizedAPY, "APY is undefined without a capital figure")
}

func TestEstimateReward_ShareTimesTotalRecoversUser(t *testing.T) {
	for _, tc := range []struct{ user, total float64 }{
		{55.5, 5055.5},
		{1, 3},
		{250, 250},
	} {
		est := EstimateReward(tc.user, tc.total, 100, 0)
		assert.InDelta(t, tc.user, est.UserShare*tc.total, 1e-9)
		assert.LessOrEqual(t, est.UserShare, 1.0)
	}
}

func TestEstimateReward_ZeroGuards(t *testing.T) {
	for _, tc := range []struct {
		name        string
		user, total float64
	}{
		{"zero total", 10, 0},
		{"zero user", 0, 100},
		{"both zero", 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			est := EstimateReward(tc.user, tc.total, 500, 1000)
			assert.Equal(t, RewardEstimate{}, est)
		})
	}
}

func TestEstimateReward_APYWithCapital(t *testing.T) {
	est := EstimateReward(100, 1000, 500, 10_000)
	require.NotNil(t, est.AnnualizedAPY)
	// 50/day * 365 / 10000
	assert.InDelta(t, 1.825, *est.AnnualizedAPY, 1e-9)
}

package rewards

// RewardEstimate projects a party's payout from its share of a market's daily
// reward pool. Pure share-of-pool: no compounding, no time decay.
type RewardEstimate struct {
	UserShare     float64 // in [0,1]
	DailyReward   float64
	MonthlyReward float64

	// AnnualizedAPY is nil when no capital figure was supplied, which is
	// different from a zero return.
	AnnualizedAPY *float64
}

const (
	daysPerMonth = 30
	daysPerYear  = 365
)

// EstimateReward projects daily/monthly/annualized rewards for a party whose
// combined score is userQMin in a market where all parties' scores sum to
// totalQMin and rewardPool is paid out per day. capitalDeployed <= 0 leaves
// the APY undefined. Zero scores yield an all-zero estimate rather than a
// division by zero.
func EstimateReward(userQMin, totalQMin, rewardPool, capitalDeployed float64) RewardEstimate {
	if totalQMin <= 0 || userQMin <= 0 {
		return RewardEstimate{}
	}

	est := RewardEstimate{UserShare: userQMin / totalQMin}
	est.DailyReward = est.UserShare * rewardPool
	est.MonthlyReward = est.DailyReward * daysPerMonth

	if capitalDeployed > 0 {
		apy := est.DailyReward * daysPerYear / capitalDeployed
		est.AnnualizedAPY = &apy
	}
	return est
}

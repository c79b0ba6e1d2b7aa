// Package market defines the value types shared by the reward scoring and
// spread optimization packages, plus the volatility statistics derived from
// historical price series.
package market

import "time"

// Side is the outcome an order is placed on.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// OrderType distinguishes resting bids from asks.
type OrderType string

const (
	TypeBid OrderType = "BID"
	TypeAsk OrderType = "ASK"
)

// Market is an immutable snapshot of one binary-outcome market and its
// reward-program configuration. The caller supplies it per computation; the
// core never mutates it.
type Market struct {
	ID         string
	Question   string
	Midpoint   float64 // fair value of YES, in (0,1)
	MaxSpread  float64 // max distance from midpoint that still qualifies
	MinSize    float64 // minimum order size to qualify
	RewardPool float64 // USDC distributed per day across all makers
}

// HasRewards reports whether the market has an active reward program.
func (m Market) HasRewards() bool {
	return m.RewardPool > 0 && m.MaxSpread > 0
}

// Order is a single resting limit order. A set of orders belonging to one
// party is the unit scored.
type Order struct {
	Price float64 // in (0,1)
	Size  float64 // shares, >= 0
	Side  Side
	Type  OrderType
}

// EffectiveMidpoint returns the midpoint the order's spread is measured
// against: market midpoint for YES orders, its complement for NO orders, so
// NO-side pricing is symmetric to YES.
func (o Order) EffectiveMidpoint(m Market) float64 {
	if o.Side == SideNo {
		return 1 - m.Midpoint
	}
	return m.Midpoint
}

// Spread returns the absolute distance of the order price from its effective
// midpoint.
func (o Order) Spread(m Market) float64 {
	s := o.Price - o.EffectiveMidpoint(m)
	if s < 0 {
		return -s
	}
	return s
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

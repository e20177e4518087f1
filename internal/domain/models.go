package domain

import "time"

// Instrument is a tradable instrument in the configured universe.
// The group tag (typically a sector) is used for selection caps.
// Immutable for the duration of a run.
type Instrument struct {
	Symbol string `json:"symbol"`
	Group  string `json:"group"`
}

// Snapshot is the point-in-time indicator bundle for one instrument at one
// evaluation tick. It is a value type: produced fresh each tick, never
// mutated after creation.
type Snapshot struct {
	Price      float64 `json:"price"`
	TrendRef   float64 `json:"trend_ref"`  // reference average (e.g. SMA value)
	Momentum   float64 `json:"momentum"`   // lookback return, as a fraction
	Volatility float64 `json:"volatility"` // annualized
	Ready      bool    `json:"ready"`      // false until the series is warmed up
}

// SnapshotSet maps instrument symbols to their snapshots for one tick.
type SnapshotSet map[string]Snapshot

// Candidate is a scored instrument, recomputed every rebalance pass.
type Candidate struct {
	Instrument Instrument `json:"instrument"`
	Score      float64    `json:"score"`
}

// Plan maps instrument symbols to target portfolio weights.
// Instruments absent from the plan have an implicit target weight of 0.
// All weights are >= 0 and sum to at most the configured leverage cap.
type Plan map[string]float64

// Order is the engine's output to the host: either a target-weight
// rebalance or a full liquidation.
type Order struct {
	Symbol       string  `json:"symbol"`
	TargetWeight float64 `json:"target_weight"`
	Liquidate    bool    `json:"liquidate"`
	Reason       string  `json:"reason"`
}

// Position is an open holding. HighWaterMark is monotonically
// non-decreasing while the position is held and is destroyed together
// with the position on liquidation, so re-entries always start fresh.
type Position struct {
	Instrument    Instrument `json:"instrument"`
	EntryPrice    float64    `json:"entry_price"`
	EntryTime     time.Time  `json:"entry_time"`
	HighWaterMark float64    `json:"high_water_mark"`
	Weight        float64    `json:"weight"`
}

// UpdateHighWater raises the high-water mark to price if it is higher.
func (p *Position) UpdateHighWater(price float64) {
	if price > p.HighWaterMark {
		p.HighWaterMark = price
	}
}

// DaysHeld returns whole days elapsed since entry.
func (p *Position) DaysHeld(now time.Time) int {
	if now.Before(p.EntryTime) {
		return 0
	}
	return int(now.Sub(p.EntryTime).Hours() / 24)
}

// PortfolioSnapshot is a serializable copy of the portfolio state,
// used for persistence and API responses.
type PortfolioSnapshot struct {
	Positions []Position `json:"positions" msgpack:"positions"`
	Cash      float64    `json:"cash" msgpack:"cash"`
	TakenAt   time.Time  `json:"taken_at" msgpack:"taken_at"`
}

package regime

import "rotor/internal/domain"

// Regime is the coarse market-state classification used to gate and
// scale trading activity.
type Regime int

const (
	Bear Regime = iota
	StressedBull
	NormalBull
	CalmBull
)

// String returns the snake_case regime name used in logs and journals.
func (r Regime) String() string {
	switch r {
	case CalmBull:
		return "calm_bull"
	case NormalBull:
		return "normal_bull"
	case StressedBull:
		return "stressed_bull"
	default:
		return "bear"
	}
}

// IsBull reports whether any long exposure is allowed.
func (r Regime) IsBull() bool {
	return r != Bear
}

// Thresholds are the annualized-volatility cut points grading a bull
// market into calm/normal/stressed tiers.
type Thresholds struct {
	CalmVol     float64
	StressedVol float64
}

// Evaluate classifies the market from the benchmark's current snapshot.
// Pure function of the snapshot: no memory of prior state, so regime
// transitions are instantaneous. A not-ready benchmark is treated as
// Bear, the defensive default.
func Evaluate(bench domain.Snapshot, t Thresholds) Regime {
	if !bench.Ready || bench.TrendRef <= 0 {
		return Bear
	}
	if bench.Price <= bench.TrendRef {
		return Bear
	}

	switch {
	case bench.Volatility < t.CalmVol:
		return CalmBull
	case bench.Volatility < t.StressedVol:
		return NormalBull
	default:
		return StressedBull
	}
}

package signal

import (
	"fmt"

	"rotor/internal/domain"
)

// Scorer evaluates one instrument's snapshot into a ranking score.
// The boolean is false when the inputs are not ready or a denominator
// is degenerate; that is a normal outcome, not an error. Scores are
// monotonic: larger is better.
type Scorer interface {
	Name() string
	Score(snap domain.Snapshot, bench domain.Snapshot) (float64, bool)
}

// New returns the scorer registered under name. Unknown names are a
// configuration error and should have been rejected at startup.
func New(name string) (Scorer, error) {
	switch name {
	case "momentum":
		return momentumScorer{}, nil
	case "relative_momentum":
		return relativeMomentumScorer{}, nil
	case "trend_momentum":
		return trendMomentumScorer{}, nil
	case "vol_adjusted_momentum":
		return volAdjustedMomentumScorer{}, nil
	default:
		return nil, fmt.Errorf("unknown scorer: %q", name)
	}
}

// momentumScorer ranks by absolute momentum: the lookback return.
type momentumScorer struct{}

func (momentumScorer) Name() string { return "momentum" }

func (momentumScorer) Score(snap, _ domain.Snapshot) (float64, bool) {
	if !snap.Ready || snap.Price <= 0 {
		return 0, false
	}
	return snap.Momentum, true
}

// relativeMomentumScorer ranks by momentum in excess of the benchmark.
type relativeMomentumScorer struct{}

func (relativeMomentumScorer) Name() string { return "relative_momentum" }

func (relativeMomentumScorer) Score(snap, bench domain.Snapshot) (float64, bool) {
	if !snap.Ready || snap.Price <= 0 || !bench.Ready {
		return 0, false
	}
	return snap.Momentum - bench.Momentum, true
}

// trendMomentumScorer ranks by momentum but only qualifies instruments
// trading above their trend reference.
type trendMomentumScorer struct{}

func (trendMomentumScorer) Name() string { return "trend_momentum" }

func (trendMomentumScorer) Score(snap, _ domain.Snapshot) (float64, bool) {
	if !snap.Ready || snap.Price <= 0 || snap.TrendRef <= 0 {
		return 0, false
	}
	if snap.Price <= snap.TrendRef {
		return 0, false
	}
	return snap.Momentum, true
}

// volAdjustedMomentumScorer ranks by momentum per unit of volatility.
type volAdjustedMomentumScorer struct{}

func (volAdjustedMomentumScorer) Name() string { return "vol_adjusted_momentum" }

func (volAdjustedMomentumScorer) Score(snap, _ domain.Snapshot) (float64, bool) {
	if !snap.Ready || snap.Price <= 0 {
		return 0, false
	}
	if snap.Volatility <= 0 {
		return 0, false
	}
	return snap.Momentum / snap.Volatility, true
}

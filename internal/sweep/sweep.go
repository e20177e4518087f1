package sweep

import (
	"fmt"
	"sort"

	"rotor/internal/config"
)

// Axis is one sweep dimension: a named parameter leaf and the values it
// takes. Integer-typed leaves truncate their values.
type Axis struct {
	Path   string
	Values []float64
}

// setters enumerates every addressable parameter leaf. Each setter
// writes exactly one leaf and never touches siblings, which is what
// makes the cartesian expansion sound. An unknown path fails at schema
// build time, not mid-sweep.
var setters = map[string]func(*config.Strategy, float64){
	"lookback.trend":          func(s *config.Strategy, v float64) { s.Lookback.Trend = int(v) },
	"lookback.momentum":       func(s *config.Strategy, v float64) { s.Lookback.Momentum = int(v) },
	"lookback.volatility":     func(s *config.Strategy, v float64) { s.Lookback.Volatility = int(v) },
	"regime.calm_vol":         func(s *config.Strategy, v float64) { s.Regime.CalmVol = v },
	"regime.stressed_vol":     func(s *config.Strategy, v float64) { s.Regime.StressedVol = v },
	"selection.max_count":     func(s *config.Strategy, v float64) { s.Selection.MaxCount = int(v) },
	"selection.max_per_group": func(s *config.Strategy, v float64) { s.Selection.MaxPerGroup = int(v) },
	"selection.min_count":     func(s *config.Strategy, v float64) { s.Selection.MinCount = int(v) },
	"sizing.leverage_cap":     func(s *config.Strategy, v float64) { s.Sizing.LeverageCap = v },
	"sizing.min_weight":       func(s *config.Strategy, v float64) { s.Sizing.MinWeight = v },
	"sizing.max_weight":       func(s *config.Strategy, v float64) { s.Sizing.MaxWeight = v },
	"sizing.tier_weight_1":    func(s *config.Strategy, v float64) { s.Sizing.TierWeight1 = v },
	"sizing.tier_weight_2":    func(s *config.Strategy, v float64) { s.Sizing.TierWeight2 = v },
	"rebalance.tolerance":     func(s *config.Strategy, v float64) { s.Rebalance.Tolerance = v },
	"exit.stop_pct":           func(s *config.Strategy, v float64) { s.Exit.StopPct = v },
	"exit.trail_pct":          func(s *config.Strategy, v float64) { s.Exit.TrailPct = v },
	"exit.max_hold_days":      func(s *config.Strategy, v float64) { s.Exit.MaxHoldDays = int(v) },
	"exit.target_pct":         func(s *config.Strategy, v float64) { s.Exit.TargetPct = v },
}

// Paths returns every addressable leaf path, sorted.
func Paths() []string {
	paths := make([]string, 0, len(setters))
	for p := range setters {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Schema is a validated set of sweep axes.
type Schema struct {
	axes []Axis
}

// NewSchema validates the axes against the known leaves.
func NewSchema(axes []Axis) (*Schema, error) {
	seen := make(map[string]bool, len(axes))
	for _, a := range axes {
		if _, ok := setters[a.Path]; !ok {
			return nil, fmt.Errorf("unknown parameter leaf: %q", a.Path)
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("axis %q has no values", a.Path)
		}
		if seen[a.Path] {
			return nil, fmt.Errorf("duplicate axis: %q", a.Path)
		}
		seen[a.Path] = true
	}
	return &Schema{axes: axes}, nil
}

// Size returns the number of variants Expand will produce.
func (s *Schema) Size() int {
	n := 1
	for _, a := range s.axes {
		n *= len(a.Values)
	}
	return n
}

// Variant is one expanded grid point: the full strategy plus the leaf
// values that produced it.
type Variant struct {
	Strategy config.Strategy
	Params   map[string]float64
}

// Expand produces the cartesian product of the axes over the base
// strategy. Every variant is an independent copy: setting one leaf
// never mutates the base or a sibling variant. Variants are named
// base_name#i in grid order.
func (s *Schema) Expand(base config.Strategy) []Variant {
	variants := make([]Variant, 0, s.Size())

	indices := make([]int, len(s.axes))
	for i := 0; ; i++ {
		v := Variant{
			Strategy: base,
			Params:   make(map[string]float64, len(s.axes)),
		}
		for ai, a := range s.axes {
			val := a.Values[indices[ai]]
			setters[a.Path](&v.Strategy, val)
			v.Params[a.Path] = val
		}
		v.Strategy.Name = fmt.Sprintf("%s#%d", base.Name, i)
		variants = append(variants, v)

		// Odometer increment over the axis indices.
		carry := len(s.axes) - 1
		for carry >= 0 {
			indices[carry]++
			if indices[carry] < len(s.axes[carry].Values) {
				break
			}
			indices[carry] = 0
			carry--
		}
		if carry < 0 {
			break
		}
	}

	return variants
}

package config

import "fmt"

// knownScorers and knownPolicies mirror the registries in the signal and
// sizing packages. Validation happens here so that a bad name fails at
// startup rather than on the first pass.
var knownScorers = map[string]bool{
	"momentum":              true,
	"relative_momentum":     true,
	"trend_momentum":        true,
	"vol_adjusted_momentum": true,
}

var knownPolicies = map[string]bool{
	"equal_weight":       true,
	"tiered":             true,
	"inverse_volatility": true,
	"regime_scaled":      true,
}

// Validate checks the strategy for configuration errors. All failures
// here are fatal: the run must not start.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Benchmark == "" {
		return fmt.Errorf("benchmark is required")
	}
	if len(s.Universe) == 0 {
		return fmt.Errorf("universe must not be empty")
	}

	if s.Lookback.Trend <= 0 {
		return fmt.Errorf("lookback.trend must be greater than 0")
	}
	if s.Lookback.Momentum <= 0 {
		return fmt.Errorf("lookback.momentum must be greater than 0")
	}
	if s.Lookback.Volatility <= 0 {
		return fmt.Errorf("lookback.volatility must be greater than 0")
	}

	if s.Regime.CalmVol <= 0 || s.Regime.StressedVol <= 0 {
		return fmt.Errorf("regime volatility cut points must be greater than 0")
	}
	if s.Regime.CalmVol >= s.Regime.StressedVol {
		return fmt.Errorf("regime.calm_vol must be below regime.stressed_vol")
	}

	if !knownScorers[s.Signal.Scorer] {
		return fmt.Errorf("unknown scorer: %q", s.Signal.Scorer)
	}
	if !knownPolicies[s.Sizing.Policy] {
		return fmt.Errorf("unknown sizing policy: %q", s.Sizing.Policy)
	}
	if s.Sizing.Policy == "regime_scaled" {
		base := s.Sizing.BasePolicy
		if base == "" {
			base = "equal_weight"
		}
		if base == "regime_scaled" || !knownPolicies[base] {
			return fmt.Errorf("invalid base_policy for regime_scaled: %q", s.Sizing.BasePolicy)
		}
	}

	if err := s.validateSelection(); err != nil {
		return err
	}
	if err := s.validateSizing(); err != nil {
		return err
	}

	if s.Rebalance.Tolerance < 0 || s.Rebalance.Tolerance >= 1 {
		return fmt.Errorf("rebalance.tolerance must be in [0, 1)")
	}

	if s.Exit.StopPct < 0 || s.Exit.StopPct >= 1 {
		return fmt.Errorf("exit.stop_pct must be in [0, 1)")
	}
	if s.Exit.TrailPct < 0 || s.Exit.TrailPct >= 1 {
		return fmt.Errorf("exit.trail_pct must be in [0, 1)")
	}
	if s.Exit.MaxHoldDays < 0 {
		return fmt.Errorf("exit.max_hold_days must not be negative")
	}
	if s.Exit.TargetPct < 0 {
		return fmt.Errorf("exit.target_pct must not be negative")
	}

	return nil
}

func (s *Strategy) validateSelection() error {
	sel := s.Selection
	if sel.MaxCount <= 0 {
		return fmt.Errorf("selection.max_count must be greater than 0")
	}
	if sel.MinCount < 0 || sel.MinCount > sel.MaxCount {
		return fmt.Errorf("selection.min_count must be in [0, max_count]")
	}
	if sel.MaxPerGroup < 0 {
		return fmt.Errorf("selection.max_per_group must not be negative")
	}
	if sel.MaxPerGroup > 0 {
		groups := len(s.Groups())
		if sel.MaxPerGroup*groups < sel.MaxCount {
			return fmt.Errorf(
				"selection constraints unsatisfiable: max_per_group %d x %d groups < max_count %d",
				sel.MaxPerGroup, groups, sel.MaxCount)
		}
	}

	seen := make(map[string]bool, len(s.Universe))
	for _, e := range s.Universe {
		if e.Symbol == "" {
			return fmt.Errorf("universe entry with empty symbol")
		}
		if seen[e.Symbol] {
			return fmt.Errorf("duplicate universe symbol: %s", e.Symbol)
		}
		seen[e.Symbol] = true
	}

	return nil
}

func (s *Strategy) validateSizing() error {
	sz := s.Sizing
	if sz.LeverageCap <= 0 {
		return fmt.Errorf("sizing.leverage_cap must be greater than 0")
	}

	switch sz.Policy {
	case "inverse_volatility":
		if sz.MinWeight < 0 || sz.MaxWeight <= 0 || sz.MinWeight > sz.MaxWeight {
			return fmt.Errorf("sizing min_weight/max_weight must satisfy 0 <= min <= max")
		}
		if float64(s.Selection.MaxCount)*sz.MaxWeight < sz.LeverageCap {
			// Cap unreachable: clamping can never sum back up to the target.
			return fmt.Errorf(
				"sizing unsatisfiable: max_count %d x max_weight %.3f < leverage_cap %.3f",
				s.Selection.MaxCount, sz.MaxWeight, sz.LeverageCap)
		}
	case "tiered":
		if sz.TierCount1 <= 0 || sz.TierWeight1 <= 0 {
			return fmt.Errorf("tiered sizing requires tier_count_1 and tier_weight_1 > 0")
		}
		if sz.TierCount2 > 0 && sz.TierWeight2 >= sz.TierWeight1 {
			return fmt.Errorf("tier_weight_1 must exceed tier_weight_2")
		}
	}

	return nil
}

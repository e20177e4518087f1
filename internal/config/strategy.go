package config

// Strategy is the static configuration for one engine run. Every former
// per-script strategy variant becomes a value of this struct; the engine
// itself is generic.
type Strategy struct {
	Name      string          `toml:"name"`
	Benchmark string          `toml:"benchmark"`
	Universe  []UniverseEntry `toml:"universe"`
	Lookback  LookbackConfig  `toml:"lookback"`
	Regime    RegimeConfig    `toml:"regime"`
	Signal    SignalConfig    `toml:"signal"`
	Selection SelectionConfig `toml:"selection"`
	Sizing    SizingConfig    `toml:"sizing"`
	Rebalance RebalanceConfig `toml:"rebalance"`
	Exit      ExitConfig      `toml:"exit"`
}

// UniverseEntry is one instrument declaration: symbol plus the group tag
// used for per-group selection caps.
type UniverseEntry struct {
	Symbol string `toml:"symbol"`
	Group  string `toml:"group"`
}

// LookbackConfig holds indicator window lengths, in trading days.
type LookbackConfig struct {
	Trend      int `toml:"trend"`
	Momentum   int `toml:"momentum"`
	Volatility int `toml:"volatility"`
}

// RegimeConfig holds the volatility cut points that grade a bull market.
// A benchmark below its trend reference is always Bear.
type RegimeConfig struct {
	CalmVol     float64 `toml:"calm_vol"`
	StressedVol float64 `toml:"stressed_vol"`
}

// SignalConfig selects the scoring function by name.
type SignalConfig struct {
	Scorer string `toml:"scorer"`
}

// SelectionConfig holds portfolio-level selection constraints.
// MaxPerGroup of 0 disables the group cap.
type SelectionConfig struct {
	MaxCount    int `toml:"max_count"`
	MaxPerGroup int `toml:"max_per_group"`
	MinCount    int `toml:"min_count"`
}

// SizingConfig selects the sizing policy and its parameters. The tier
// and min/max weight fields only apply to the policies that use them.
type SizingConfig struct {
	Policy      string        `toml:"policy"`
	BasePolicy  string        `toml:"base_policy"` // for regime_scaled
	LeverageCap float64       `toml:"leverage_cap"`
	MinWeight   float64       `toml:"min_weight"`
	MaxWeight   float64       `toml:"max_weight"`
	TierCount1  int           `toml:"tier_count_1"`
	TierCount2  int           `toml:"tier_count_2"`
	TierWeight1 float64       `toml:"tier_weight_1"`
	TierWeight2 float64       `toml:"tier_weight_2"`
	Scalars     RegimeScalars `toml:"scalars"`
}

// RegimeScalars are the leverage multipliers applied by the
// regime_scaled policy.
type RegimeScalars struct {
	CalmBull     float64 `toml:"calm_bull"`
	NormalBull   float64 `toml:"normal_bull"`
	StressedBull float64 `toml:"stressed_bull"`
	Bear         float64 `toml:"bear"`
}

// RebalanceConfig holds the order-issuance tolerance band and the cron
// schedules driving the two evaluation cadences.
type RebalanceConfig struct {
	Tolerance     float64 `toml:"tolerance"`
	Schedule      string  `toml:"schedule"`
	ExitSchedule  string  `toml:"exit_schedule"`
}

// ExitConfig holds the per-position exit thresholds. A zero threshold
// disables that trigger.
type ExitConfig struct {
	StopPct     float64 `toml:"stop_pct"`
	TrailPct    float64 `toml:"trail_pct"`
	MaxHoldDays int     `toml:"max_hold_days"`
	SignalExit  bool    `toml:"signal_exit"`
	TargetPct   float64 `toml:"target_pct"`
}

// DefaultStrategy returns a strategy with sane defaults for every knob.
// Loaded TOML values override these.
func DefaultStrategy() Strategy {
	return Strategy{
		Name:      "default",
		Benchmark: "SPY",
		Lookback: LookbackConfig{
			Trend:      200,
			Momentum:   126,
			Volatility: 63,
		},
		Regime: RegimeConfig{
			CalmVol:     0.15,
			StressedVol: 0.25,
		},
		Signal: SignalConfig{
			Scorer: "trend_momentum",
		},
		Selection: SelectionConfig{
			MaxCount: 5,
			MinCount: 2,
		},
		Sizing: SizingConfig{
			Policy:      "equal_weight",
			LeverageCap: 1.0,
			MinWeight:   0.05,
			MaxWeight:   0.40,
			TierCount1:  2,
			TierCount2:  3,
			TierWeight1: 0.25,
			TierWeight2: 0.15,
			Scalars: RegimeScalars{
				CalmBull:     1.25,
				NormalBull:   1.0,
				StressedBull: 0.5,
				Bear:         0.0,
			},
		},
		Rebalance: RebalanceConfig{
			Tolerance:    0.02,
			Schedule:     "0 0 16 * * MON",
			ExitSchedule: "0 5 16 * * MON-FRI",
		},
		Exit: ExitConfig{
			StopPct:     0.10,
			TrailPct:    0.15,
			MaxHoldDays: 0,
			SignalExit:  true,
			TargetPct:   0,
		},
	}
}

// Groups returns the distinct group tags declared in the universe.
func (s *Strategy) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, e := range s.Universe {
		if !seen[e.Group] {
			seen[e.Group] = true
			groups = append(groups, e.Group)
		}
	}
	return groups
}

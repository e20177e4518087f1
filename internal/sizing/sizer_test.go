package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotor/internal/config"
	"rotor/internal/domain"
	"rotor/internal/regime"
)

func candidates(symbols ...string) []domain.Candidate {
	cands := make([]domain.Candidate, len(symbols))
	for i, s := range symbols {
		cands[i] = domain.Candidate{Instrument: domain.Instrument{Symbol: s, Group: "g"}}
	}
	return cands
}

func snapsWithVol(vols map[string]float64) domain.SnapshotSet {
	set := make(domain.SnapshotSet, len(vols))
	for sym, vol := range vols {
		set[sym] = domain.Snapshot{Price: 100, Volatility: vol, Ready: true}
	}
	return set
}

func planTotal(plan domain.Plan) float64 {
	total := 0.0
	for _, w := range plan {
		total += w
	}
	return total
}

func TestNew_UnknownPolicy(t *testing.T) {
	_, err := New(config.SizingConfig{Policy: "martingale"})
	assert.Error(t, err)
}

func TestEqualWeight(t *testing.T) {
	p, err := New(config.SizingConfig{Policy: "equal_weight", LeverageCap: 1.0})
	require.NoError(t, err)

	plan := p.Size(candidates("AAA", "BBB", "CCC", "DDD"), nil, regime.NormalBull)
	require.Len(t, plan, 4)
	for _, w := range plan {
		assert.InDelta(t, 0.25, w, 1e-9)
	}
}

func TestEqualWeight_EmptySelection(t *testing.T) {
	p, _ := New(config.SizingConfig{Policy: "equal_weight", LeverageCap: 1.0})
	plan := p.Size(nil, nil, regime.NormalBull)
	assert.Empty(t, plan)
}

func TestTiered_TopRanksGetLargerWeights(t *testing.T) {
	p, err := New(config.SizingConfig{
		Policy: "tiered", LeverageCap: 1.0,
		TierCount1: 2, TierWeight1: 0.25,
		TierCount2: 3, TierWeight2: 0.10,
	})
	require.NoError(t, err)

	plan := p.Size(candidates("AAA", "BBB", "CCC", "DDD", "EEE", "FFF"), nil, regime.NormalBull)
	assert.InDelta(t, 0.25, plan["AAA"], 1e-9)
	assert.InDelta(t, 0.25, plan["BBB"], 1e-9)
	assert.InDelta(t, 0.10, plan["CCC"], 1e-9)
	assert.InDelta(t, 0.10, plan["EEE"], 1e-9)
	// Beyond both tiers: no target weight.
	_, present := plan["FFF"]
	assert.False(t, present)
	assert.LessOrEqual(t, planTotal(plan), 1.0+1e-9)
}

func TestTiered_ScalesDownWhenOverCap(t *testing.T) {
	p, _ := New(config.SizingConfig{
		Policy: "tiered", LeverageCap: 1.0,
		TierCount1: 3, TierWeight1: 0.40,
		TierCount2: 2, TierWeight2: 0.20,
	})

	plan := p.Size(candidates("AAA", "BBB", "CCC", "DDD", "EEE"), nil, regime.NormalBull)
	assert.InDelta(t, 1.0, planTotal(plan), 1e-9)
	assert.Greater(t, plan["AAA"], plan["DDD"])
}

func TestInverseVol_ClampAndRenormalize(t *testing.T) {
	// Volatilities 10/20/40 with bounds [5%, 40%]: the raw 4:2:1 split
	// puts the first symbol over the max; after clamping, the freed
	// budget must be redistributed so the total still hits the cap.
	p, err := New(config.SizingConfig{
		Policy: "inverse_volatility", LeverageCap: 1.0,
		MinWeight: 0.05, MaxWeight: 0.40,
	})
	require.NoError(t, err)

	snaps := snapsWithVol(map[string]float64{"AAA": 10, "BBB": 20, "CCC": 40})
	plan := p.Size(candidates("AAA", "BBB", "CCC"), snaps, regime.NormalBull)

	assert.InDelta(t, 1.0, planTotal(plan), 1e-6)
	assert.InDelta(t, 0.40, plan["AAA"], 1e-6)
	assert.InDelta(t, 0.40, plan["BBB"], 1e-6)
	assert.InDelta(t, 0.20, plan["CCC"], 1e-6)
}

func TestInverseVol_LowerVolGetsMoreWeight(t *testing.T) {
	p, _ := New(config.SizingConfig{
		Policy: "inverse_volatility", LeverageCap: 1.0,
		MinWeight: 0.0, MaxWeight: 1.0,
	})

	snaps := snapsWithVol(map[string]float64{"AAA": 0.10, "BBB": 0.30})
	plan := p.Size(candidates("AAA", "BBB"), snaps, regime.NormalBull)

	assert.Greater(t, plan["AAA"], plan["BBB"])
	assert.InDelta(t, 1.0, planTotal(plan), 1e-9)
}

func TestInverseVol_NeverExceedsCap(t *testing.T) {
	// min_weight pinning can overshoot the budget; the cap must win.
	p, _ := New(config.SizingConfig{
		Policy: "inverse_volatility", LeverageCap: 0.5,
		MinWeight: 0.20, MaxWeight: 0.40,
	})

	snaps := snapsWithVol(map[string]float64{"AAA": 0.1, "BBB": 0.1, "CCC": 0.1, "DDD": 0.1})
	plan := p.Size(candidates("AAA", "BBB", "CCC", "DDD"), snaps, regime.NormalBull)

	assert.LessOrEqual(t, planTotal(plan), 0.5+1e-9)
	for _, w := range plan {
		assert.GreaterOrEqual(t, w, 0.0)
	}
}

func TestRegimeScaled_BearGoesToCash(t *testing.T) {
	p, err := New(config.SizingConfig{
		Policy: "regime_scaled", LeverageCap: 1.25,
		Scalars: config.RegimeScalars{CalmBull: 1.25, NormalBull: 1.0, StressedBull: 0.5, Bear: 0},
	})
	require.NoError(t, err)

	plan := p.Size(candidates("AAA", "BBB"), nil, regime.Bear)
	assert.Empty(t, plan)
}

func TestRegimeScaled_ScalarsApply(t *testing.T) {
	cfg := config.SizingConfig{
		Policy: "regime_scaled", LeverageCap: 1.25,
		Scalars: config.RegimeScalars{CalmBull: 1.25, NormalBull: 1.0, StressedBull: 0.5, Bear: 0},
	}
	p, _ := New(cfg)

	tests := []struct {
		name  string
		reg   regime.Regime
		total float64
	}{
		{"calm bull levers up", regime.CalmBull, 1.25},
		{"normal bull", regime.NormalBull, 1.0},
		{"stressed bull halves", regime.StressedBull, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Size(candidates("AAA", "BBB"), nil, tt.reg)
			assert.InDelta(t, tt.total, planTotal(plan), 1e-9)
		})
	}
}

func TestRegimeScaled_BoundedByCap(t *testing.T) {
	p, _ := New(config.SizingConfig{
		Policy: "regime_scaled", LeverageCap: 1.0,
		Scalars: config.RegimeScalars{CalmBull: 1.25, NormalBull: 1.0, StressedBull: 0.5, Bear: 0},
	})

	plan := p.Size(candidates("AAA", "BBB"), nil, regime.CalmBull)
	assert.InDelta(t, 1.0, planTotal(plan), 1e-9)
}

func TestAllPolicies_WeightsNonNegativeAndCapped(t *testing.T) {
	snaps := snapsWithVol(map[string]float64{"AAA": 0.1, "BBB": 0.2, "CCC": 0.3})
	configs := []config.SizingConfig{
		{Policy: "equal_weight", LeverageCap: 1.0},
		{Policy: "tiered", LeverageCap: 1.0, TierCount1: 1, TierWeight1: 0.5, TierCount2: 2, TierWeight2: 0.3},
		{Policy: "inverse_volatility", LeverageCap: 1.0, MinWeight: 0.05, MaxWeight: 0.5},
		{Policy: "regime_scaled", LeverageCap: 1.0, Scalars: config.RegimeScalars{CalmBull: 1.25, NormalBull: 1, StressedBull: 0.5}},
	}

	for _, cfg := range configs {
		t.Run(cfg.Policy, func(t *testing.T) {
			p, err := New(cfg)
			require.NoError(t, err)
			for _, reg := range []regime.Regime{regime.CalmBull, regime.NormalBull, regime.StressedBull, regime.Bear} {
				plan := p.Size(candidates("AAA", "BBB", "CCC"), snaps, reg)
				assert.LessOrEqual(t, planTotal(plan), 1.0+1e-9)
				for _, w := range plan {
					assert.GreaterOrEqual(t, w, 0.0)
				}
			}
		})
	}
}

package sizing

import (
	"fmt"

	"rotor/internal/config"
	"rotor/internal/domain"
	"rotor/internal/regime"
)

// volFloor guards the inverse-volatility division. Instruments with a
// genuinely zero volatility never reach the sizer (the scorer skips
// them), so this only matters for near-flat series.
const volFloor = 1e-4

// Policy maps a selected candidate set to target portfolio weights.
// Every policy produces weights >= 0 summing to at most the configured
// leverage cap.
type Policy interface {
	Name() string
	Size(selected []domain.Candidate, snaps domain.SnapshotSet, reg regime.Regime) domain.Plan
}

// New returns the sizing policy registered under cfg.Policy. Unknown
// names are a configuration error caught at startup.
func New(cfg config.SizingConfig) (Policy, error) {
	switch cfg.Policy {
	case "equal_weight":
		return equalWeight{cap: cfg.LeverageCap}, nil
	case "tiered":
		return tiered{cfg: cfg}, nil
	case "inverse_volatility":
		return inverseVol{cfg: cfg}, nil
	case "regime_scaled":
		baseName := cfg.BasePolicy
		if baseName == "" {
			baseName = "equal_weight"
		}
		baseCfg := cfg
		baseCfg.Policy = baseName
		baseCfg.LeverageCap = 1.0 // scalar applies to unit base weights
		base, err := New(baseCfg)
		if err != nil {
			return nil, fmt.Errorf("regime_scaled base: %w", err)
		}
		return regimeScaled{base: base, cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown sizing policy: %q", cfg.Policy)
	}
}

// equalWeight assigns cap/n to every selected candidate.
type equalWeight struct {
	cap float64
}

func (equalWeight) Name() string { return "equal_weight" }

func (p equalWeight) Size(selected []domain.Candidate, _ domain.SnapshotSet, _ regime.Regime) domain.Plan {
	plan := make(domain.Plan, len(selected))
	if len(selected) == 0 {
		return plan
	}
	w := p.cap / float64(len(selected))
	for _, c := range selected {
		plan[c.Instrument.Symbol] = w
	}
	return plan
}

// tiered gives the top tier_count_1 candidates tier_weight_1 each and
// the next tier_count_2 candidates tier_weight_2 each. The selection
// order is already the ranking, so tiers follow it directly. If the
// tier weights would exceed the cap they are scaled down pro rata.
type tiered struct {
	cfg config.SizingConfig
}

func (tiered) Name() string { return "tiered" }

func (p tiered) Size(selected []domain.Candidate, _ domain.SnapshotSet, _ regime.Regime) domain.Plan {
	plan := make(domain.Plan, len(selected))
	total := 0.0

	for i, c := range selected {
		var w float64
		switch {
		case i < p.cfg.TierCount1:
			w = p.cfg.TierWeight1
		case i < p.cfg.TierCount1+p.cfg.TierCount2:
			w = p.cfg.TierWeight2
		default:
			continue
		}
		plan[c.Instrument.Symbol] = w
		total += w
	}

	if total > p.cfg.LeverageCap && total > 0 {
		scale := p.cfg.LeverageCap / total
		for sym := range plan {
			plan[sym] *= scale
		}
	}
	return plan
}

// inverseVol allocates proportionally to 1/volatility, clamps each
// weight to [min_weight, max_weight], and re-normalizes the unclamped
// remainder so the plan still sums to the target total. Skipping the
// re-normalization after clamping silently shrinks total exposure.
type inverseVol struct {
	cfg config.SizingConfig
}

func (inverseVol) Name() string { return "inverse_volatility" }

func (p inverseVol) Size(selected []domain.Candidate, snaps domain.SnapshotSet, _ regime.Regime) domain.Plan {
	plan := make(domain.Plan, len(selected))
	if len(selected) == 0 {
		return plan
	}

	inv := make(map[string]float64, len(selected))
	active := make([]string, 0, len(selected))
	for _, c := range selected {
		vol := snaps[c.Instrument.Symbol].Volatility
		if vol < volFloor {
			vol = volFloor
		}
		inv[c.Instrument.Symbol] = 1.0 / vol
		active = append(active, c.Instrument.Symbol)
	}

	remaining := p.cfg.LeverageCap

	// Water-filling: pin weights that hit a bound, re-normalize the
	// rest of the budget over the still-free symbols, repeat until
	// stable. Terminates because each round pins at least one symbol.
	for len(active) > 0 {
		sumInv := 0.0
		for _, sym := range active {
			sumInv += inv[sym]
		}

		pinned := false
		next := active[:0]
		for _, sym := range active {
			w := remaining * inv[sym] / sumInv
			switch {
			case w > p.cfg.MaxWeight:
				plan[sym] = p.cfg.MaxWeight
				remaining -= p.cfg.MaxWeight
				pinned = true
			case w < p.cfg.MinWeight:
				plan[sym] = p.cfg.MinWeight
				remaining -= p.cfg.MinWeight
				pinned = true
			default:
				next = append(next, sym)
			}
		}
		active = next

		if !pinned {
			for _, sym := range active {
				plan[sym] = remaining * inv[sym] / sumInv
			}
			break
		}
	}

	// If pinning at min_weight overshot the budget, scale the whole
	// plan back under the cap; the cap is the hard invariant.
	total := 0.0
	for _, w := range plan {
		total += w
	}
	if total > p.cfg.LeverageCap && total > 0 {
		scale := p.cfg.LeverageCap / total
		for sym := range plan {
			plan[sym] *= scale
		}
	}
	return plan
}

// regimeScaled multiplies a base policy's unit weights by a
// regime-dependent scalar, then bounds the total at the leverage cap.
type regimeScaled struct {
	base Policy
	cfg  config.SizingConfig
}

func (regimeScaled) Name() string { return "regime_scaled" }

func (p regimeScaled) Size(selected []domain.Candidate, snaps domain.SnapshotSet, reg regime.Regime) domain.Plan {
	scalar := p.scalar(reg)
	if scalar <= 0 {
		return domain.Plan{}
	}

	plan := p.base.Size(selected, snaps, reg)
	total := 0.0
	for sym := range plan {
		plan[sym] *= scalar
		total += plan[sym]
	}

	if total > p.cfg.LeverageCap && total > 0 {
		scale := p.cfg.LeverageCap / total
		for sym := range plan {
			plan[sym] *= scale
		}
	}
	return plan
}

func (p regimeScaled) scalar(reg regime.Regime) float64 {
	switch reg {
	case regime.CalmBull:
		return p.cfg.Scalars.CalmBull
	case regime.NormalBull:
		return p.cfg.Scalars.NormalBull
	case regime.StressedBull:
		return p.cfg.Scalars.StressedBull
	default:
		return p.cfg.Scalars.Bear
	}
}

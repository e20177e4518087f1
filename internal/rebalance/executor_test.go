package rebalance

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotor/internal/domain"
	"rotor/internal/portfolio"
)

func holding(t *testing.T, weights map[string]float64) *portfolio.State {
	t.Helper()
	pf := portfolio.NewState()
	for sym, w := range weights {
		pf.ApplyFill(domain.Instrument{Symbol: sym, Group: "g"}, 100, w, time.Now())
	}
	return pf
}

func TestApply_WithinToleranceProducesNoOrder(t *testing.T) {
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"AAA": 0.25})

	orders := e.Apply(domain.Plan{"AAA": 0.26}, pf)
	assert.Empty(t, orders)
}

func TestApply_OutsideToleranceProducesOneOrder(t *testing.T) {
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"AAA": 0.25})

	orders := e.Apply(domain.Plan{"AAA": 0.30}, pf)
	require.Len(t, orders, 1)
	assert.Equal(t, "AAA", orders[0].Symbol)
	assert.Equal(t, 0.30, orders[0].TargetWeight)
	assert.False(t, orders[0].Liquidate)
}

func TestApply_LiquidationsBeforeEntries(t *testing.T) {
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"OLD1": 0.2, "OLD2": 0.2})

	orders := e.Apply(domain.Plan{"NEW": 0.4}, pf)
	require.Len(t, orders, 3)
	assert.True(t, orders[0].Liquidate)
	assert.True(t, orders[1].Liquidate)
	assert.Equal(t, "NEW", orders[2].Symbol)
	assert.False(t, orders[2].Liquidate)
}

func TestApply_ZeroWeightInPlanLiquidates(t *testing.T) {
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"AAA": 0.2})

	orders := e.Apply(domain.Plan{"AAA": 0}, pf)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].Liquidate)
}

func TestApply_EmptyPlanLiquidatesEverything(t *testing.T) {
	// The defensive all-cash fallback is just an empty plan.
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"AAA": 0.2, "BBB": 0.3})

	orders := e.Apply(domain.Plan{}, pf)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.True(t, o.Liquidate)
	}
}

func TestApply_DoesNotMutatePortfolio(t *testing.T) {
	e := NewExecutor(0.02, zerolog.Nop())
	pf := holding(t, map[string]float64{"AAA": 0.2})

	_ = e.Apply(domain.Plan{"BBB": 0.4}, pf)

	// The diff is advisory; fills are applied by the host.
	assert.Equal(t, 0.2, pf.Weight("AAA"))
	assert.Equal(t, 0.0, pf.Weight("BBB"))
}

func TestApply_DeterministicOrdering(t *testing.T) {
	e := NewExecutor(0.0, zerolog.Nop())
	pf := portfolio.NewState()
	plan := domain.Plan{"CCC": 0.2, "AAA": 0.2, "BBB": 0.2}

	orders := e.Apply(plan, pf)
	require.Len(t, orders, 3)
	assert.Equal(t, "AAA", orders[0].Symbol)
	assert.Equal(t, "BBB", orders[1].Symbol)
	assert.Equal(t, "CCC", orders[2].Symbol)
}

package rebalance

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"rotor/internal/domain"
	"rotor/internal/portfolio"
)

// Executor diffs the current holdings against a target plan and emits
// the orders needed to converge, suppressing churn inside the tolerance
// band. It never applies fills itself: the full diff is computed before
// any order is issued, so an aborted pass leaves state untouched.
type Executor struct {
	tolerance float64
	log       zerolog.Logger
}

// NewExecutor creates a rebalance executor with the given tolerance band.
func NewExecutor(tolerance float64, log zerolog.Logger) *Executor {
	return &Executor{
		tolerance: tolerance,
		log:       log.With().Str("component", "rebalance").Logger(),
	}
}

// Apply returns the order list converging pf toward plan. Liquidations
// come first so freed capital is logically available before new
// entries. Within each phase, symbols are processed in sorted order for
// reproducible output.
func (e *Executor) Apply(plan domain.Plan, pf *portfolio.State) []domain.Order {
	var orders []domain.Order

	// Phase one: anything held but absent from the plan (or present at
	// zero weight) is liquidated in full.
	for _, sym := range pf.HeldSymbols() {
		if w, ok := plan[sym]; !ok || w <= 0 {
			orders = append(orders, domain.Order{
				Symbol:    sym,
				Liquidate: true,
				Reason:    "dropped_from_plan",
			})
		}
	}

	// Phase two: entries and weight adjustments outside the band.
	symbols := make([]string, 0, len(plan))
	for sym := range plan {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		target := plan[sym]
		if target <= 0 {
			continue
		}
		current := pf.Weight(sym)
		if math.Abs(target-current) <= e.tolerance {
			continue
		}
		orders = append(orders, domain.Order{
			Symbol:       sym,
			TargetWeight: target,
			Reason:       "rebalance",
		})
	}

	if len(orders) > 0 {
		e.log.Debug().Int("orders", len(orders)).Msg("Rebalance diff computed")
	}
	return orders
}

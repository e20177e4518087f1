package portfolio

import (
	"sort"
	"time"

	"rotor/internal/domain"
)

// State is the engine-owned portfolio: open positions plus the implied
// cash fraction. Only the rebalance executor and the exit state machine
// mutate it, and never concurrently; the engine serializes access.
type State struct {
	positions map[string]*domain.Position
}

// NewState creates an all-cash portfolio.
func NewState() *State {
	return &State{positions: make(map[string]*domain.Position)}
}

// Get returns the position for symbol, if held.
func (s *State) Get(symbol string) (*domain.Position, bool) {
	pos, ok := s.positions[symbol]
	return pos, ok
}

// Weight returns the current weight for symbol, 0 when flat.
func (s *State) Weight(symbol string) float64 {
	if pos, ok := s.positions[symbol]; ok {
		return pos.Weight
	}
	return 0
}

// HeldSymbols returns the held symbols in sorted order for
// deterministic iteration.
func (s *State) HeldSymbols() []string {
	symbols := make([]string, 0, len(s.positions))
	for sym := range s.positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Cash returns the uninvested fraction of the portfolio.
func (s *State) Cash() float64 {
	cash := 1.0
	for _, pos := range s.positions {
		cash -= pos.Weight
	}
	return cash
}

// ApplyFill records a fill at price for the given target weight. A fill
// on a flat instrument creates the Position, with the high-water mark
// seeded at the entry price; a fill on a held instrument only adjusts
// its weight, keeping the original entry bookkeeping.
func (s *State) ApplyFill(inst domain.Instrument, price, weight float64, at time.Time) {
	if weight <= 0 {
		s.Liquidate(inst.Symbol)
		return
	}

	if pos, ok := s.positions[inst.Symbol]; ok {
		pos.Weight = weight
		return
	}

	s.positions[inst.Symbol] = &domain.Position{
		Instrument:    inst,
		EntryPrice:    price,
		EntryTime:     at,
		HighWaterMark: price,
		Weight:        weight,
	}
}

// Liquidate removes the position and all of its exit-tracking state in
// one step, so a later re-entry starts with fresh bookkeeping. Returns
// the weight that was freed.
func (s *State) Liquidate(symbol string) float64 {
	pos, ok := s.positions[symbol]
	if !ok {
		return 0
	}
	delete(s.positions, symbol)
	return pos.Weight
}

// Snapshot returns a serializable copy of the state.
func (s *State) Snapshot(at time.Time) domain.PortfolioSnapshot {
	snap := domain.PortfolioSnapshot{
		Positions: make([]domain.Position, 0, len(s.positions)),
		Cash:      s.Cash(),
		TakenAt:   at,
	}
	for _, sym := range s.HeldSymbols() {
		snap.Positions = append(snap.Positions, *s.positions[sym])
	}
	return snap
}

// Restore replaces the state with the contents of a snapshot.
func (s *State) Restore(snap domain.PortfolioSnapshot) {
	s.positions = make(map[string]*domain.Position, len(snap.Positions))
	for _, pos := range snap.Positions {
		p := pos
		s.positions[p.Instrument.Symbol] = &p
	}
}

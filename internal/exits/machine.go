package exits

import (
	"time"

	"github.com/rs/zerolog"

	"rotor/internal/domain"
)

// Reason identifies which trigger fired for an exiting position.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonHardStop
	ReasonTrailingStop
	ReasonTimeStop
	ReasonSignalExit
	ReasonProfitTarget
)

// String returns the snake_case reason recorded in orders and journals.
func (r Reason) String() string {
	switch r {
	case ReasonHardStop:
		return "hard_stop"
	case ReasonTrailingStop:
		return "trailing_stop"
	case ReasonTimeStop:
		return "time_stop"
	case ReasonSignalExit:
		return "signal_exit"
	case ReasonProfitTarget:
		return "profit_target"
	default:
		return "none"
	}
}

// Thresholds are the exit triggers. A zero value disables that trigger.
type Thresholds struct {
	StopPct     float64
	TrailPct    float64
	MaxHoldDays int
	SignalExit  bool
	TargetPct   float64
}

// Machine evaluates the exit triggers for one held position per bar,
// independent of the rebalance cadence. Triggers are checked in a fixed
// priority order so a bar where several fire at once always resolves
// the same way: hard stop, trailing stop, time stop, signal reversal,
// profit target. The price stops must stay ahead of the time stop.
type Machine struct {
	cfg Thresholds
	log zerolog.Logger
}

// NewMachine creates an exit state machine with the given thresholds.
func NewMachine(cfg Thresholds, log zerolog.Logger) *Machine {
	return &Machine{
		cfg: cfg,
		log: log.With().Str("component", "exits").Logger(),
	}
}

// Check evaluates one position against the bar's snapshot. It advances
// the position's high-water mark as a side effect and returns the first
// matching trigger. A not-ready snapshot never triggers: the position
// is simply skipped for this bar.
func (m *Machine) Check(pos *domain.Position, snap domain.Snapshot, now time.Time) (Reason, bool) {
	if !snap.Ready || snap.Price <= 0 {
		return ReasonNone, false
	}
	price := snap.Price

	if m.cfg.StopPct > 0 && price < pos.EntryPrice*(1-m.cfg.StopPct) {
		return ReasonHardStop, true
	}

	pos.UpdateHighWater(price)
	if m.cfg.TrailPct > 0 && price < pos.HighWaterMark*(1-m.cfg.TrailPct) {
		return ReasonTrailingStop, true
	}

	if m.cfg.MaxHoldDays > 0 && pos.DaysHeld(now) >= m.cfg.MaxHoldDays {
		return ReasonTimeStop, true
	}

	if m.cfg.SignalExit && (snap.Price <= snap.TrendRef || snap.Momentum < 0) {
		return ReasonSignalExit, true
	}

	if m.cfg.TargetPct > 0 && price >= pos.EntryPrice*(1+m.cfg.TargetPct) {
		return ReasonProfitTarget, true
	}

	return ReasonNone, false
}

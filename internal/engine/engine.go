package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rotor/internal/config"
	"rotor/internal/domain"
	"rotor/internal/exits"
	"rotor/internal/indicators"
	"rotor/internal/journal"
	"rotor/internal/portfolio"
	"rotor/internal/rebalance"
	"rotor/internal/regime"
	"rotor/internal/selection"
	"rotor/internal/signal"
	"rotor/internal/sizing"
	"rotor/internal/snapshot"
)

// Engine drives the five-stage rebalance pipeline and the per-bar exit
// checks over one exclusively-owned portfolio. Evaluation is
// single-threaded; the mutex only exists because the cron scheduler and
// the HTTP read API live on different goroutines, and a rebalance pass
// and an exit pass must never interleave.
type Engine struct {
	mu sync.Mutex

	strategy    *config.Strategy
	provider    indicators.Provider
	scorer      signal.Scorer
	sizer       sizing.Policy
	executor    *rebalance.Executor
	exitMachine *exits.Machine
	pf          *portfolio.State

	instruments []domain.Instrument
	bySymbol    map[string]domain.Instrument

	journal   *journal.Journal
	snapshots *snapshot.Store

	runID string
	log   zerolog.Logger

	lastPlan   domain.Plan
	lastRegime regime.Regime
}

// Config wires an engine. Journal and Snapshots are optional.
type Config struct {
	Strategy    *config.Strategy
	Provider    indicators.Provider
	Instruments []domain.Instrument
	Journal     *journal.Journal
	Snapshots   *snapshot.Store
	Log         zerolog.Logger
}

// New builds an engine from a validated strategy. Scorer and sizer
// construction can still fail on a hand-built strategy; those are
// configuration errors and abort startup.
func New(cfg Config) (*Engine, error) {
	scorer, err := signal.New(cfg.Strategy.Signal.Scorer)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	sizer, err := sizing.New(cfg.Strategy.Sizing)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	runID := uuid.NewString()
	if cfg.Journal != nil {
		runID = cfg.Journal.RunID()
	}

	e := &Engine{
		strategy:    cfg.Strategy,
		provider:    cfg.Provider,
		scorer:      scorer,
		sizer:       sizer,
		executor:    rebalance.NewExecutor(cfg.Strategy.Rebalance.Tolerance, cfg.Log),
		exitMachine: exits.NewMachine(exitThresholds(cfg.Strategy.Exit), cfg.Log),
		pf:          portfolio.NewState(),
		instruments: cfg.Instruments,
		bySymbol:    make(map[string]domain.Instrument, len(cfg.Instruments)),
		journal:     cfg.Journal,
		snapshots:   cfg.Snapshots,
		runID:       runID,
		log:         cfg.Log.With().Str("component", "engine").Str("run_id", runID).Logger(),
	}
	for _, inst := range cfg.Instruments {
		e.bySymbol[inst.Symbol] = inst
	}

	if cfg.Snapshots != nil {
		if snap, ok, err := cfg.Snapshots.Load(); err != nil {
			return nil, fmt.Errorf("engine: restore portfolio: %w", err)
		} else if ok {
			e.pf.Restore(snap)
			e.log.Info().Int("positions", len(snap.Positions)).Msg("Portfolio restored from snapshot")
		}
	}

	return e, nil
}

func exitThresholds(cfg config.ExitConfig) exits.Thresholds {
	return exits.Thresholds{
		StopPct:     cfg.StopPct,
		TrailPct:    cfg.TrailPct,
		MaxHoldDays: cfg.MaxHoldDays,
		SignalExit:  cfg.SignalExit,
		TargetPct:   cfg.TargetPct,
	}
}

// RunID returns the identifier stamped on this run's journal rows.
func (e *Engine) RunID() string {
	return e.runID
}

// RebalancePass runs one full evaluation: regime gate, scoring,
// selection, sizing, diffing, and simulated fills. Degenerate periods
// (bear regime, too few candidates) converge to the defensive all-cash
// plan rather than failing the pass.
func (e *Engine) RebalancePass(ctx context.Context, asOf time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	symbols := e.universeSymbols()
	snaps, err := e.provider.Snapshots(ctx, symbols, asOf)
	if err != nil {
		return fmt.Errorf("rebalance pass: %w", err)
	}

	bench := snaps[e.strategy.Benchmark]
	reg := regime.Evaluate(bench, regime.Thresholds{
		CalmVol:     e.strategy.Regime.CalmVol,
		StressedVol: e.strategy.Regime.StressedVol,
	})

	plan := domain.Plan{}
	note := ""
	candidateCount := 0

	if !reg.IsBull() {
		note = "bear_regime"
	} else {
		candidates := e.scoreUniverse(snaps, bench)
		candidateCount = len(candidates)

		selected, ok := selection.Select(candidates, selection.Constraints{
			MaxCount:    e.strategy.Selection.MaxCount,
			MaxPerGroup: e.strategy.Selection.MaxPerGroup,
			MinCount:    e.strategy.Selection.MinCount,
		})
		if !ok {
			note = "insufficient_candidates"
		} else {
			plan = e.sizer.Size(selected, snaps, reg)
		}
	}

	orders := e.executor.Apply(plan, e.pf)
	e.applyFills(orders, snaps, asOf)

	e.lastPlan = plan
	e.lastRegime = reg

	e.log.Info().
		Str("regime", reg.String()).
		Int("candidates", candidateCount).
		Int("targets", len(plan)).
		Int("orders", len(orders)).
		Str("note", note).
		Msg("Rebalance pass complete")

	e.record(asOf, "rebalance", reg.String(), candidateCount, orders, note)
	e.persist(asOf)
	return nil
}

// ExitPass checks every held position against the bar's snapshot and
// liquidates on the first matching trigger. Runs at a higher cadence
// than, and independently of, the rebalance schedule.
func (e *Engine) ExitPass(ctx context.Context, asOf time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.pf.HeldSymbols()
	if len(held) == 0 {
		return nil
	}

	snaps, err := e.provider.Snapshots(ctx, held, asOf)
	if err != nil {
		return fmt.Errorf("exit pass: %w", err)
	}

	var orders []domain.Order
	for _, sym := range held {
		pos, ok := e.pf.Get(sym)
		if !ok {
			continue
		}

		reason, fired := e.exitMachine.Check(pos, snaps[sym], asOf)
		if !fired {
			continue
		}

		e.log.Info().
			Str("symbol", sym).
			Str("reason", reason.String()).
			Float64("entry", pos.EntryPrice).
			Float64("price", snaps[sym].Price).
			Msg("Exit triggered")

		orders = append(orders, domain.Order{
			Symbol:    sym,
			Liquidate: true,
			Reason:    reason.String(),
		})
		e.pf.Liquidate(sym)
	}

	if len(orders) > 0 {
		e.record(asOf, "exit_check", e.lastRegime.String(), 0, orders, "")
		e.persist(asOf)
	}
	return nil
}

// universeSymbols returns the instrument symbols plus the benchmark.
func (e *Engine) universeSymbols() []string {
	symbols := make([]string, 0, len(e.instruments)+1)
	inUniverse := false
	for _, inst := range e.instruments {
		symbols = append(symbols, inst.Symbol)
		if inst.Symbol == e.strategy.Benchmark {
			inUniverse = true
		}
	}
	if !inUniverse {
		symbols = append(symbols, e.strategy.Benchmark)
	}
	return symbols
}

// scoreUniverse scores every instrument, skipping not-ready and
// degenerate ones. A single bad instrument never aborts the pass.
func (e *Engine) scoreUniverse(snaps domain.SnapshotSet, bench domain.Snapshot) []domain.Candidate {
	var candidates []domain.Candidate
	for _, inst := range e.instruments {
		score, ok := e.scorer.Score(snaps[inst.Symbol], bench)
		if !ok {
			e.log.Debug().Str("symbol", inst.Symbol).Msg("Instrument skipped: not ready")
			continue
		}
		candidates = append(candidates, domain.Candidate{Instrument: inst, Score: score})
	}
	return candidates
}

// applyFills plays the order list back into the portfolio at snapshot
// prices, simulating the host's fill step. Liquidations are first in
// the list by construction.
func (e *Engine) applyFills(orders []domain.Order, snaps domain.SnapshotSet, asOf time.Time) {
	for _, o := range orders {
		if o.Liquidate {
			e.pf.Liquidate(o.Symbol)
			continue
		}
		inst, ok := e.bySymbol[o.Symbol]
		if !ok {
			continue
		}
		e.pf.ApplyFill(inst, snaps[o.Symbol].Price, o.TargetWeight, asOf)
	}
}

func (e *Engine) record(asOf time.Time, kind, reg string, candidates int, orders []domain.Order, note string) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordPass(asOf, kind, reg, candidates, len(orders), note); err != nil {
		e.log.Error().Err(err).Msg("Failed to journal pass")
	}
	if err := e.journal.RecordOrders(asOf, orders); err != nil {
		e.log.Error().Err(err).Msg("Failed to journal orders")
	}
}

func (e *Engine) persist(asOf time.Time) {
	if e.snapshots == nil {
		return
	}
	if err := e.snapshots.Save(e.pf.Snapshot(asOf)); err != nil {
		e.log.Error().Err(err).Msg("Failed to save portfolio snapshot")
	}
}

// Positions returns a copy of the open positions.
func (e *Engine) Positions() []domain.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pf.Snapshot(time.Now()).Positions
}

// Cash returns the current uninvested fraction.
func (e *Engine) Cash() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pf.Cash()
}

// LastPlan returns a copy of the most recent target plan.
func (e *Engine) LastPlan() domain.Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	plan := make(domain.Plan, len(e.lastPlan))
	for sym, w := range e.lastPlan {
		plan[sym] = w
	}
	return plan
}

// LastRegime returns the regime of the most recent rebalance pass.
func (e *Engine) LastRegime() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRegime.String()
}

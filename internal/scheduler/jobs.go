package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"rotor/internal/engine"
)

// RebalanceJob drives the weekly full evaluation: regime gate, scoring,
// selection, sizing, and the resulting order diff.
type RebalanceJob struct {
	engine  *engine.Engine
	timeout time.Duration
	log     zerolog.Logger
}

// NewRebalanceJob creates the rebalance job.
func NewRebalanceJob(e *engine.Engine, timeout time.Duration, log zerolog.Logger) *RebalanceJob {
	return &RebalanceJob{
		engine:  e,
		timeout: timeout,
		log:     log.With().Str("job", "rebalance").Logger(),
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "rebalance"
}

// Run executes one rebalance pass against the current bar.
func (j *RebalanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.engine.RebalancePass(ctx, time.Now())
}

// ExitCheckJob drives the daily per-position exit checks, independent of
// the rebalance cadence.
type ExitCheckJob struct {
	engine  *engine.Engine
	timeout time.Duration
	log     zerolog.Logger
}

// NewExitCheckJob creates the exit check job.
func NewExitCheckJob(e *engine.Engine, timeout time.Duration, log zerolog.Logger) *ExitCheckJob {
	return &ExitCheckJob{
		engine:  e,
		timeout: timeout,
		log:     log.With().Str("job", "exit_check").Logger(),
	}
}

// Name returns the job name
func (j *ExitCheckJob) Name() string {
	return "exit_check"
}

// Run checks every held position against its exit triggers.
func (j *ExitCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.engine.ExitPass(ctx, time.Now())
}

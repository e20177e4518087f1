package scheduler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rotor/internal/database"
)

// HealthCheckJob performs database integrity checks.
// Runs every 6 hours to catch corruption before it spreads into the
// decision journal or the price history.
type HealthCheckJob struct {
	log       zerolog.Logger
	journalDB *database.DB
	historyDB *database.DB
}

// NewHealthCheckJob creates a new health check job.
func NewHealthCheckJob(journalDB, historyDB *database.DB, log zerolog.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		log:       log.With().Str("job", "health_check").Logger(),
		journalDB: journalDB,
		historyDB: historyDB,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	j.log.Info().Msg("Starting database health check")
	startTime := time.Now()

	if err := j.checkDatabases(); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return err
	}

	j.checkWALCheckpoints()

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Health check completed successfully")

	return nil
}

// checkDatabases verifies integrity of the SQLite databases. Corruption
// here is critical: the journal is the audit trail and the history is
// the indicator input.
func (j *HealthCheckJob) checkDatabases() error {
	for name, db := range j.databases() {
		if db == nil {
			j.log.Warn().Str("database", name).Msg("Database not initialized, skipping")
			continue
		}

		if err := db.IntegrityCheck(); err != nil {
			return fmt.Errorf("database %s is corrupted: %w", name, err)
		}

		j.log.Debug().Str("database", name).Msg("Database integrity OK")
	}

	return nil
}

// checkWALCheckpoints monitors WAL checkpoint status
func (j *HealthCheckJob) checkWALCheckpoints() {
	for name, db := range j.databases() {
		if db == nil {
			continue
		}

		var mode, busy, walFrames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&mode, &busy, &walFrames, &checkpointed)
		if err != nil {
			j.log.Warn().
				Err(err).
				Str("database", name).
				Msg("Failed to check WAL checkpoint")
			continue
		}

		if walFrames > 1000 {
			j.log.Warn().
				Str("database", name).
				Int("wal_frames", walFrames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, checkpoint may be needed")
		} else {
			j.log.Debug().
				Str("database", name).
				Int("wal_frames", walFrames).
				Msg("WAL checkpoint status OK")
		}
	}
}

func (j *HealthCheckJob) databases() map[string]*database.DB {
	return map[string]*database.DB{
		"journal": j.journalDB,
		"history": j.historyDB,
	}
}

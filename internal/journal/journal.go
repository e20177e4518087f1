package journal

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rotor/internal/database"
	"rotor/internal/domain"
)

// Journal records every evaluation pass and every emitted order so a
// run can be audited after the fact: which regime gated the pass, how
// many candidates qualified, and which trigger produced each exit.
type Journal struct {
	db    *database.DB
	runID string
	log   zerolog.Logger
}

// PassRecord is one journaled evaluation pass.
type PassRecord struct {
	RunID      string    `json:"run_id"`
	At         time.Time `json:"at"`
	Kind       string    `json:"kind"` // rebalance | exit_check
	Regime     string    `json:"regime"`
	Candidates int       `json:"candidates"`
	Orders     int       `json:"orders"`
	Note       string    `json:"note"`
}

// OrderRecord is one journaled order.
type OrderRecord struct {
	RunID        string    `json:"run_id"`
	At           time.Time `json:"at"`
	Symbol       string    `json:"symbol"`
	TargetWeight float64   `json:"target_weight"`
	Liquidate    bool      `json:"liquidate"`
	Reason       string    `json:"reason"`
}

// New creates a journal for the given run and ensures its schema.
func New(db *database.DB, runID string, log zerolog.Logger) (*Journal, error) {
	j := &Journal{
		db:    db,
		runID: runID,
		log:   log.With().Str("component", "journal").Logger(),
	}
	if err := j.migrate(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS passes (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL,
			at         TEXT NOT NULL,
			kind       TEXT NOT NULL,
			regime     TEXT NOT NULL,
			candidates INTEGER NOT NULL,
			orders     INTEGER NOT NULL,
			note       TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("failed to create passes table: %w", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS orders (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			at            TEXT NOT NULL,
			symbol        TEXT NOT NULL,
			target_weight REAL NOT NULL,
			liquidate     INTEGER NOT NULL,
			reason        TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create orders table: %w", err)
	}
	return nil
}

// RunID returns the run identifier stamped on every row.
func (j *Journal) RunID() string {
	return j.runID
}

// RecordPass journals one evaluation pass.
func (j *Journal) RecordPass(at time.Time, kind, regime string, candidates int, orders int, note string) error {
	_, err := j.db.Exec(
		`INSERT INTO passes (run_id, at, kind, regime, candidates, orders, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID, at.UTC().Format(time.RFC3339), kind, regime, candidates, orders, note,
	)
	if err != nil {
		return fmt.Errorf("failed to record pass: %w", err)
	}
	return nil
}

// RecordOrders journals a batch of emitted orders.
func (j *Journal) RecordOrders(at time.Time, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin order batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO orders (run_id, at, symbol, target_weight, liquidate, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare order insert: %w", err)
	}
	defer stmt.Close()

	ts := at.UTC().Format(time.RFC3339)
	for _, o := range orders {
		if _, err := stmt.Exec(j.runID, ts, o.Symbol, o.TargetWeight, o.Liquidate, o.Reason); err != nil {
			return fmt.Errorf("failed to insert order for %s: %w", o.Symbol, err)
		}
	}

	return tx.Commit()
}

// RecentPasses returns the latest n journaled passes, newest first.
func (j *Journal) RecentPasses(n int) ([]PassRecord, error) {
	rows, err := j.db.Query(
		`SELECT run_id, at, kind, regime, candidates, orders, note
		 FROM passes ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query passes: %w", err)
	}
	defer rows.Close()

	var records []PassRecord
	for rows.Next() {
		var r PassRecord
		var at string
		if err := rows.Scan(&r.RunID, &at, &r.Kind, &r.Regime, &r.Candidates, &r.Orders, &r.Note); err != nil {
			return nil, fmt.Errorf("failed to scan pass: %w", err)
		}
		r.At, _ = time.Parse(time.RFC3339, at)
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentOrders returns the latest n journaled orders, newest first.
func (j *Journal) RecentOrders(n int) ([]OrderRecord, error) {
	rows, err := j.db.Query(
		`SELECT run_id, at, symbol, target_weight, liquidate, reason
		 FROM orders ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var records []OrderRecord
	for rows.Next() {
		var r OrderRecord
		var at string
		if err := rows.Scan(&r.RunID, &at, &r.Symbol, &r.TargetWeight, &r.Liquidate, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		r.At, _ = time.Parse(time.RFC3339, at)
		records = append(records, r)
	}
	return records, rows.Err()
}

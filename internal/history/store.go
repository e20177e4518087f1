package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"rotor/internal/database"
)

// Store is the per-symbol close-price history repository backing the
// indicator snapshot provider. Prices are daily adjusted closes keyed by
// (symbol, day).
type Store struct {
	db  *database.DB
	log zerolog.Logger
}

// NewStore creates a history store and ensures its schema exists.
func NewStore(db *database.DB, log zerolog.Logger) (*Store, error) {
	s := &Store{
		db:  db,
		log: log.With().Str("component", "history").Logger(),
	}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT NOT NULL,
			day    TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, day)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create prices table: %w", err)
	}
	return nil
}

// Upsert inserts or replaces one close price.
func (s *Store) Upsert(symbol string, day time.Time, close float64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO prices (symbol, day, close) VALUES (?, ?, ?)`,
		symbol, day.Format("2006-01-02"), close,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price for %s: %w", symbol, err)
	}
	return nil
}

// Closes returns up to n closes for symbol, oldest first, using only
// observations on or before asOf. Fewer than n rows is not an error:
// the caller decides whether the series is warmed up.
func (s *Store) Closes(ctx context.Context, symbol string, n int, asOf time.Time) ([]float64, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT close FROM prices
		 WHERE symbol = ? AND day <= ?
		 ORDER BY day DESC LIMIT ?`,
		symbol, asOf.Format("2006-01-02"), n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes for %s: %w", symbol, err)
	}
	defer rows.Close()

	var reversed []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan close for %s: %w", symbol, err)
		}
		reversed = append(reversed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	closes := make([]float64, len(reversed))
	for i, c := range reversed {
		closes[len(reversed)-1-i] = c
	}
	return closes, nil
}

// Count returns the number of stored observations for symbol.
func (s *Store) Count(symbol string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM prices WHERE symbol = ?`, symbol).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count prices for %s: %w", symbol, err)
	}
	return n, nil
}

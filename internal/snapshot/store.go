package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"rotor/internal/domain"
)

// Store persists the portfolio state between process restarts within a
// run. The encoding is msgpack to a single file, written atomically via
// a temp-file rename.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a snapshot store writing to path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("component", "snapshot").Logger(),
	}
}

// Save writes the snapshot to disk, replacing any previous one.
func (s *Store) Save(snap domain.PortfolioSnapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode portfolio snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.log.Debug().Int("positions", len(snap.Positions)).Msg("Portfolio snapshot saved")
	return nil
}

// Load reads the latest snapshot. The boolean is false when no snapshot
// exists yet, which is not an error.
func (s *Store) Load() (domain.PortfolioSnapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.PortfolioSnapshot{}, false, nil
	}
	if err != nil {
		return domain.PortfolioSnapshot{}, false, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap domain.PortfolioSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return domain.PortfolioSnapshot{}, false, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, true, nil
}

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotor/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func day(d int) time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func TestStore_ClosesOldestFirst(t *testing.T) {
	s := newTestStore(t)
	for i, c := range []float64{100, 101, 99, 102} {
		require.NoError(t, s.Upsert("SPY", day(i), c))
	}

	closes, err := s.Closes(context.Background(), "SPY", 10, day(10))
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 101, 99, 102}, closes)
}

func TestStore_ClosesHonorsLimitAndAsOf(t *testing.T) {
	s := newTestStore(t)
	for i, c := range []float64{100, 101, 99, 102, 105} {
		require.NoError(t, s.Upsert("SPY", day(i), c))
	}

	// Limit keeps the most recent n, still oldest first.
	closes, err := s.Closes(context.Background(), "SPY", 3, day(10))
	require.NoError(t, err)
	assert.Equal(t, []float64{99, 102, 105}, closes)

	// asOf excludes later observations.
	closes, err = s.Closes(context.Background(), "SPY", 10, day(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 101, 99}, closes)
}

func TestStore_UpsertReplacesSameDay(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("SPY", day(0), 100))
	require.NoError(t, s.Upsert("SPY", day(0), 100.5))

	n, err := s.Count("SPY")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	closes, err := s.Closes(context.Background(), "SPY", 10, day(1))
	require.NoError(t, err)
	assert.Equal(t, []float64{100.5}, closes)
}

func TestStore_UnknownSymbolIsEmptyNotError(t *testing.T) {
	s := newTestStore(t)

	closes, err := s.Closes(context.Background(), "MISSING", 10, day(0))
	require.NoError(t, err)
	assert.Empty(t, closes)
}

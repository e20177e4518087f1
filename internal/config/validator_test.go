package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStrategy() Strategy {
	s := DefaultStrategy()
	s.Universe = []UniverseEntry{
		{Symbol: "AAPL", Group: "tech"},
		{Symbol: "MSFT", Group: "tech"},
		{Symbol: "XOM", Group: "energy"},
		{Symbol: "JPM", Group: "financials"},
	}
	return s
}

func TestValidate_ValidConfig(t *testing.T) {
	s := testStrategy()
	assert.NoError(t, s.Validate())
}

func TestValidate_MissingName(t *testing.T) {
	s := testStrategy()
	s.Name = ""

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestValidate_UnknownScorer(t *testing.T) {
	s := testStrategy()
	s.Signal.Scorer = "astrology"

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scorer")
}

func TestValidate_UnknownPolicy(t *testing.T) {
	s := testStrategy()
	s.Sizing.Policy = "kelly_yolo"

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sizing policy")
}

func TestValidate_UnsatisfiableGroupCap(t *testing.T) {
	// 3 groups x 1 per group can never fill max_count 5.
	s := testStrategy()
	s.Selection.MaxCount = 5
	s.Selection.MaxPerGroup = 1

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsatisfiable")
}

func TestValidate_SatisfiableGroupCap(t *testing.T) {
	s := testStrategy()
	s.Selection.MaxCount = 3
	s.Selection.MaxPerGroup = 1

	assert.NoError(t, s.Validate())
}

func TestValidate_DuplicateSymbol(t *testing.T) {
	s := testStrategy()
	s.Universe = append(s.Universe, UniverseEntry{Symbol: "AAPL", Group: "tech"})

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate universe symbol")
}

func TestValidate_Lookbacks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Strategy)
	}{
		{"zero trend", func(s *Strategy) { s.Lookback.Trend = 0 }},
		{"negative momentum", func(s *Strategy) { s.Lookback.Momentum = -1 }},
		{"zero volatility", func(s *Strategy) { s.Lookback.Volatility = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStrategy()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidate_ToleranceRange(t *testing.T) {
	s := testStrategy()
	s.Rebalance.Tolerance = 1.0

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestValidate_InverseVolWeightBounds(t *testing.T) {
	s := testStrategy()
	s.Sizing.Policy = "inverse_volatility"
	s.Sizing.MinWeight = 0.5
	s.Sizing.MaxWeight = 0.4

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_weight/max_weight")
}

func TestValidate_InverseVolCapUnreachable(t *testing.T) {
	s := testStrategy()
	s.Sizing.Policy = "inverse_volatility"
	s.Selection.MaxCount = 2
	s.Selection.MinCount = 2
	s.Sizing.MaxWeight = 0.3
	s.Sizing.LeverageCap = 1.0

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsatisfiable")
}

func TestValidate_RegimeScaledBasePolicy(t *testing.T) {
	s := testStrategy()
	s.Sizing.Policy = "regime_scaled"
	s.Sizing.BasePolicy = "regime_scaled"

	err := s.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base_policy")
}

func TestLoadStrategyString_OverridesDefaults(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	s, err := loader.LoadStrategyString(`
name = "sector_momentum"
benchmark = "SPY"

[[universe]]
symbol = "AAPL"
group = "tech"

[[universe]]
symbol = "XOM"
group = "energy"

[selection]
max_count = 2
min_count = 1

[exit]
stop_pct = 0.08
trail_pct = 0.12
`)
	require.NoError(t, err)

	assert.Equal(t, "sector_momentum", s.Name)
	assert.Equal(t, 2, s.Selection.MaxCount)
	assert.Equal(t, 0.08, s.Exit.StopPct)
	// Keys the file omits keep their defaults.
	assert.Equal(t, 200, s.Lookback.Trend)
	assert.Equal(t, "trend_momentum", s.Signal.Scorer)
}

func TestLoadStrategyString_InvalidConfigRejected(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadStrategyString(`
name = "broken"
benchmark = "SPY"

[[universe]]
symbol = "AAPL"
group = "tech"

[signal]
scorer = "nope"
`)
	assert.Error(t, err)
}

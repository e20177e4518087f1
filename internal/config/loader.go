package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Loader handles loading strategy configurations from TOML files.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "config_loader").Logger(),
	}
}

// LoadStrategy loads a strategy configuration from a TOML file.
// Defaults apply for any key the file omits, and the result is
// validated before being returned: configuration errors surface here,
// before the first simulation tick.
func (l *Loader) LoadStrategy(configPath string) (*Strategy, error) {
	l.log.Info().Str("path", configPath).Msg("Loading strategy configuration")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("strategy config not found: %s", configPath)
	}

	strategy := DefaultStrategy()
	if _, err := toml.DecodeFile(configPath, &strategy); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy %q: %w", strategy.Name, err)
	}

	l.log.Info().
		Str("name", strategy.Name).
		Str("scorer", strategy.Signal.Scorer).
		Str("policy", strategy.Sizing.Policy).
		Int("universe", len(strategy.Universe)).
		Msg("Strategy configuration loaded")

	return &strategy, nil
}

// LoadStrategyString loads a strategy configuration from a TOML string.
// Useful for tests and for sweep-generated variants.
func (l *Loader) LoadStrategyString(tomlString string) (*Strategy, error) {
	strategy := DefaultStrategy()
	if _, err := toml.Decode(tomlString, &strategy); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if err := strategy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy %q: %w", strategy.Name, err)
	}

	return &strategy, nil
}

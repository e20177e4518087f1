package universe

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"rotor/internal/config"
	"rotor/internal/domain"
)

// Registration is the per-entry outcome of building the universe. A
// failed entry carries its error instead of being silently dropped, so
// missing-symbol handling is a visible, testable step.
type Registration struct {
	Entry config.UniverseEntry
	Err   error
}

// Result is the validated instrument list plus the per-entry outcomes.
type Result struct {
	Instruments   []domain.Instrument
	Registrations []Registration
}

// Failed returns the registrations that were rejected.
func (r Result) Failed() []Registration {
	var failed []Registration
	for _, reg := range r.Registrations {
		if reg.Err != nil {
			failed = append(failed, reg)
		}
	}
	return failed
}

// Build validates the configured universe entries into an instrument
// list before the run starts. Symbols are sorted for deterministic
// iteration everywhere downstream.
func Build(entries []config.UniverseEntry, log zerolog.Logger) Result {
	l := log.With().Str("component", "universe").Logger()

	seen := make(map[string]bool, len(entries))
	result := Result{}

	for _, e := range entries {
		reg := Registration{Entry: e}
		switch {
		case e.Symbol == "":
			reg.Err = fmt.Errorf("empty symbol")
		case e.Group == "":
			reg.Err = fmt.Errorf("empty group for symbol %s", e.Symbol)
		case seen[e.Symbol]:
			reg.Err = fmt.Errorf("duplicate symbol %s", e.Symbol)
		default:
			seen[e.Symbol] = true
			result.Instruments = append(result.Instruments, domain.Instrument{
				Symbol: e.Symbol,
				Group:  e.Group,
			})
		}

		if reg.Err != nil {
			l.Warn().Str("symbol", e.Symbol).Err(reg.Err).Msg("Universe entry rejected")
		}
		result.Registrations = append(result.Registrations, reg)
	}

	sort.Slice(result.Instruments, func(i, j int) bool {
		return result.Instruments[i].Symbol < result.Instruments[j].Symbol
	})

	l.Info().
		Int("accepted", len(result.Instruments)).
		Int("rejected", len(result.Failed())).
		Msg("Universe built")

	return result
}

// Symbols returns the accepted symbols in sorted order.
func (r Result) Symbols() []string {
	symbols := make([]string, len(r.Instruments))
	for i, inst := range r.Instruments {
		symbols[i] = inst.Symbol
	}
	return symbols
}

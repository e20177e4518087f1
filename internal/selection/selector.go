package selection

import (
	"sort"

	"rotor/internal/domain"
)

// Constraints are the portfolio-level selection limits.
// MaxPerGroup of 0 disables the group cap.
type Constraints struct {
	MaxCount    int
	MaxPerGroup int
	MinCount    int
}

// Select ranks candidates and applies the constraints. The ranking is
// deterministic: stable sort descending by score with ties broken by
// ascending symbol, so identical inputs always produce the identical
// ordered selection. Candidates that would exceed a group cap are
// skipped, not queued.
//
// The boolean is false when fewer than MinCount candidates survive;
// the caller must treat that as insufficient signal and fall back to
// the defensive plan, not as an error.
func Select(candidates []domain.Candidate, c Constraints) ([]domain.Candidate, bool) {
	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Instrument.Symbol < ranked[j].Instrument.Symbol
	})

	groupCounts := make(map[string]int)
	selected := make([]domain.Candidate, 0, c.MaxCount)

	for _, cand := range ranked {
		if len(selected) >= c.MaxCount {
			break
		}
		if c.MaxPerGroup > 0 && groupCounts[cand.Instrument.Group] >= c.MaxPerGroup {
			continue
		}
		groupCounts[cand.Instrument.Group]++
		selected = append(selected, cand)
	}

	if len(selected) < c.MinCount {
		return nil, false
	}
	return selected, true
}

// Package dedup turns similarity matches into a duplicate decision.
package dedup

import (
	"sort"

	"github.com/RadieNoice/Namma-City/internal/simindex"
)

// Decision classifies a draft as duplicate-of(existing id) or novel.
type Decision struct {
	IsDuplicate bool             `json:"is_duplicate"`
	Matches     []simindex.Match `json:"matches,omitempty"`
}

// Best returns the canonical duplicate target: the highest-scoring
// match, or nil when there are no matches.
func (d *Decision) Best() *simindex.Match {
	if len(d.Matches) == 0 {
		return nil
	}
	return &d.Matches[0]
}

// Decide is a pure function: the draft is a duplicate iff at least one
// match scores at or above threshold. The full match list is kept,
// sorted descending, so callers can show "similar issues" even below
// duplicate confidence. An empty match list (including the upstream
// embed/search failure path) is never a duplicate.
func Decide(matches []simindex.Match, threshold float64) Decision {
	sorted := make([]simindex.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	isDuplicate := false
	for _, m := range sorted {
		if m.Score >= threshold {
			isDuplicate = true
			break
		}
	}

	return Decision{
		IsDuplicate: isDuplicate,
		Matches:     sorted,
	}
}

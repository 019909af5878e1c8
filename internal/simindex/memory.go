package simindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// seedCategory marks the bootstrap placeholder entry. Entries carrying
// it never surface in search results.
const seedCategory = "__seed__"

// Memory is an in-process Index using exact cosine similarity. A
// read-write lock serializes Insert/Rebuild against concurrent Search;
// readers see either the pre- or post-insert corpus, never a torn
// entry.
type Memory struct {
	mu      sync.RWMutex
	dims    int
	entries map[string]Entry
	seeded  bool
}

// NewMemory creates an empty in-memory index. When seed is true the
// corpus starts with a single placeholder entry so that a search over
// an otherwise empty index never errors; the placeholder is filtered
// from all results.
func NewMemory(seed bool) *Memory {
	m := &Memory{entries: make(map[string]Entry), seeded: seed}
	if seed {
		m.addSeedLocked()
	}
	return m
}

// addSeedLocked inserts the placeholder. Caller must hold mu (or be
// the constructor).
func (m *Memory) addSeedLocked() {
	id := uuid.NewString()
	m.entries[id] = Entry{
		ReportID: id,
		Vector:   nil,
		Metadata: Metadata{Category: seedCategory},
	}
}

// Insert adds or overwrites the entry for its report id.
func (m *Memory) Insert(ctx context.Context, entry Entry) error {
	if entry.ReportID == "" {
		return fmt.Errorf("%w: entry has no report id", models.ErrInvalidInput)
	}
	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: entry has no vector", models.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dims == 0 {
		m.dims = len(entry.Vector)
	} else if len(entry.Vector) != m.dims {
		return fmt.Errorf("%w: vector dimension %d, index dimension %d",
			models.ErrIndexCorrupted, len(entry.Vector), m.dims)
	}

	m.entries[entry.ReportID] = entry
	return nil
}

// Search returns up to k matches with score >= scoreFloor, descending.
func (m *Memory) Search(ctx context.Context, vector []float32, k int, scoreFloor float64) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", models.ErrInvalidInput)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Metadata.Category == seedCategory {
			continue
		}
		score := cosine(vector, e.Vector)
		if score < scoreFloor {
			continue
		}
		matches = append(matches, Match{
			ReportID: e.ReportID,
			Score:    score,
			Metadata: e.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}

	return matches, nil
}

// Rebuild atomically replaces the corpus.
func (m *Memory) Rebuild(ctx context.Context, entries []Entry) error {
	fresh := make(map[string]Entry, len(entries))
	dims := 0
	for _, e := range entries {
		if e.ReportID == "" || len(e.Vector) == 0 {
			return fmt.Errorf("%w: rebuild entry missing id or vector", models.ErrInvalidInput)
		}
		if dims == 0 {
			dims = len(e.Vector)
		} else if len(e.Vector) != dims {
			return fmt.Errorf("%w: mixed vector dimensions in rebuild", models.ErrIndexCorrupted)
		}
		fresh[e.ReportID] = e
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = fresh
	m.dims = dims
	if m.seeded && len(fresh) == 0 {
		m.addSeedLocked()
	}
	return nil
}

// UpdateStatus mutates an entry's status metadata.
func (m *Memory) UpdateStatus(ctx context.Context, reportID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[reportID]
	if !ok {
		return fmt.Errorf("report %s not indexed", reportID)
	}
	e.Metadata.Status = status
	m.entries[reportID] = e
	return nil
}

// Len reports the number of indexed entries, excluding the placeholder.
func (m *Memory) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if e.Metadata.Category != seedCategory {
			n++
		}
	}
	return n, nil
}

// Close releases resources
func (m *Memory) Close() error {
	return nil
}

// cosine returns the cosine similarity of a and b clamped to [0,1].
// Mismatched lengths or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Package simindex provides the similarity index over report
// embeddings: incremental insertion, k-nearest-neighbor search with a
// score cutoff, and full rebuild from the Issue Store. The index is a
// derived cache; the store stays authoritative.
package simindex

import "context"

// Metadata travels with each indexed vector and surfaces in matches.
type Metadata struct {
	Category string `json:"category"`
	Status   string `json:"status"`
}

// Entry is one (vector, report id, metadata) tuple in the index.
type Entry struct {
	ReportID string    `json:"report_id"`
	Vector   []float32 `json:"-"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a transient read-only search result. Score is in [0,1],
// higher means more similar.
type Match struct {
	ReportID string   `json:"report_id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Index is the similarity index contract shared by the in-memory and
// Qdrant backends.
type Index interface {
	// Insert adds one entry. Idempotent per report id: a second insert
	// with the same id overwrites rather than duplicating.
	Insert(ctx context.Context, entry Entry) error

	// Search returns up to k matches ordered by descending score,
	// keeping only those with score >= scoreFloor. Pass scoreFloor 0
	// for raw top-k.
	Search(ctx context.Context, vector []float32, k int, scoreFloor float64) ([]Match, error)

	// Rebuild replaces the entire corpus, used for cold-start seeding
	// from the Issue Store snapshot.
	Rebuild(ctx context.Context, entries []Entry) error

	// UpdateStatus mutates the status metadata of an entry, keeping the
	// index eventually consistent with the store.
	UpdateStatus(ctx context.Context, reportID, status string) error

	// Len reports the number of indexed entries.
	Len(ctx context.Context) (int, error)

	Close() error
}

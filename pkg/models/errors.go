package models

import "errors"

// Engine error taxonomy. Callers match with errors.Is.
var (
	// ErrInvalidInput is terminal: the caller must fix the submission
	// (e.g. empty report text). Nothing is persisted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable marks a failed embedding service call.
	// Non-terminal: submission continues with dedup skipped.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRoutingUnavailable marks a failed routing model call.
	// Non-terminal: submission continues with the default routing decision.
	ErrRoutingUnavailable = errors.New("routing service unavailable")

	// ErrIndexCorrupted marks a similarity index invariant violation.
	// Fatal to the call; the index should be rebuilt from the Issue Store.
	ErrIndexCorrupted = errors.New("similarity index corrupted")
)

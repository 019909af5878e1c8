// Package store defines the Issue Store collaborator contract and two
// reference implementations. The store is the system of record for
// reports; the similarity index is rebuilt from it.
package store

import (
	"context"
	"errors"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("report not found")

// Store persists citizen reports.
type Store interface {
	// Create persists a report and returns the store-assigned id.
	Create(ctx context.Context, report *models.Report) (string, error)

	// Get fetches a single report by id.
	Get(ctx context.Context, id string) (*models.Report, error)

	// ListRecent returns up to limit reports, newest first. Used to
	// seed and rebuild the similarity index.
	ListRecent(ctx context.Context, limit int) ([]*models.Report, error)

	// ListByUser returns all reports submitted by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Report, error)

	// UpdateStatus changes a report's status.
	UpdateStatus(ctx context.Context, id, status string) error

	Close() error
}

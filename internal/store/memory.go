package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// Memory is an in-process Store used by tests and configless runs.
type Memory struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{reports: make(map[string]*models.Report)}
}

// Create persists a report and returns the assigned id.
func (m *Memory) Create(ctx context.Context, report *models.Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	stored := *report
	stored.ID = uuid.NewString()
	if stored.Status == "" {
		stored.Status = models.StatusOpen
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.reports[stored.ID] = &stored
	report.ID = stored.ID
	return stored.ID, nil
}

// Get fetches a single report by id.
func (m *Memory) Get(ctx context.Context, id string) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

// ListRecent returns up to limit reports, newest first.
func (m *Memory) ListRecent(ctx context.Context, limit int) ([]*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reports := m.snapshot(func(*models.Report) bool { return true })
	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// ListByUser returns all reports submitted by a user, newest first.
func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot(func(r *models.Report) bool { return r.UserID == userID }), nil
}

// snapshot copies matching reports sorted newest first. Caller holds mu.
func (m *Memory) snapshot(keep func(*models.Report) bool) []*models.Report {
	var reports []*models.Report
	for _, r := range m.reports {
		if keep(r) {
			cp := *r
			reports = append(reports, &cp)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID > reports[j].ID
	})
	return reports
}

// UpdateStatus changes a report's status.
func (m *Memory) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reports[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Close releases resources
func (m *Memory) Close() error {
	return nil
}

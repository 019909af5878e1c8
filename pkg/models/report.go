package models

import (
	"fmt"
	"strings"
	"time"
)

// Report statuses as stored by the Issue Store.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Priority levels assigned by routing.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Report is a persisted citizen issue report. The Issue Store is the
// system of record for these; the similarity index is a rebuildable
// cache derived from them.
type Report struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Description   string    `json:"description"`
	Location      string    `json:"location,omitempty"`
	Category      string    `json:"category"`
	Department    string    `json:"department"`
	Priority      string    `json:"priority"`
	EstimatedTime string    `json:"estimated_time"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Draft is a report as submitted by a citizen, before dedup and routing.
// It is created per submission attempt and discarded afterwards.
type Draft struct {
	UserID       string `json:"user_id,omitempty"`
	Text         string `json:"text"`
	LocationHint string `json:"location_hint,omitempty"`
}

// Summary returns a one-line description suitable for chat replies.
// Truncation counts runes, not bytes, so non-Latin report text stays
// valid UTF-8.
func (r *Report) Summary() string {
	desc := r.Description
	if runes := []rune(desc); len(runes) > 80 {
		desc = string(runes[:77]) + "..."
	}
	return fmt.Sprintf("[%s] %s (%s, priority %s, status %s)",
		r.ID, desc, r.Department, r.Priority, r.Status)
}

// NormalizePriority lower-cases a priority value and coerces anything
// outside {low, medium, high} to medium.
func NormalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

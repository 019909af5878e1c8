package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/RadieNoice/Namma-City/pkg/models"
)

// SQLite is the file-backed Store implementation.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the reports database at path and creates
// the schema if it does not exist.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			description TEXT NOT NULL,
			location TEXT,
			category TEXT,
			department TEXT,
			priority TEXT,
			estimated_time TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user_id ON reports(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create persists a report and returns the assigned id.
func (s *SQLite) Create(ctx context.Context, report *models.Report) (string, error) {
	now := time.Now().UTC()
	if report.Status == "" {
		report.Status = models.StatusOpen
	}
	report.CreatedAt = now
	report.UpdatedAt = now

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (user_id, description, location, category, department, priority, estimated_time, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.UserID, report.Description, report.Location, report.Category,
		report.Department, report.Priority, report.EstimatedTime, report.Status,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("inserting report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("reading insert id: %w", err)
	}

	report.ID = strconv.FormatInt(id, 10)
	return report.ID, nil
}

// Get fetches a single report by id.
func (s *SQLite) Get(ctx context.Context, id string) (*models.Report, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, description, location, category, department, priority, estimated_time, status, created_at, updated_at
		 FROM reports WHERE id = ?`, id)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying report: %w", err)
	}
	return report, nil
}

// ListRecent returns up to limit reports, newest first.
func (s *SQLite) ListRecent(ctx context.Context, limit int) ([]*models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, location, category, department, priority, estimated_time, status, created_at, updated_at
		 FROM reports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// ListByUser returns all reports submitted by a user, newest first.
func (s *SQLite) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, description, location, category, department, priority, estimated_time, status, created_at, updated_at
		 FROM reports WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// UpdateStatus changes a report's status.
func (s *SQLite) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reports SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var r models.Report
	var createdAt, updatedAt string

	err := row.Scan(&r.ID, &r.UserID, &r.Description, &r.Location, &r.Category,
		&r.Department, &r.Priority, &r.EstimatedTime, &r.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

func collectReports(rows *sql.Rows) ([]*models.Report, error) {
	var reports []*models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

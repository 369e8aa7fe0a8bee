// Package history persists migration run records in SQLite.
//
// Database location: <config-dir>/codeshift.db. One row per run; the
// schema is versioned through a migrations table so it can evolve
// without dropping history.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run records one migration run.
type Run struct {
	ID            string
	MigrationType string
	Root          string
	DryRun        bool
	Status        string
	FilesScanned  int
	FilesChanged  int
	FilesFailed   int
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// NewRun creates a Run in the running state with a fresh ID.
func NewRun(migrationType, root string, dryRun bool) *Run {
	return &Run{
		ID:            uuid.NewString(),
		MigrationType: migrationType,
		Root:          root,
		DryRun:        dryRun,
		Status:        StatusRunning,
		StartedAt:     time.Now().UTC(),
	}
}

// Complete marks the run finished with the given counts.
func (r *Run) Complete(scanned, changed, failed int) {
	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.FilesScanned = scanned
	r.FilesChanged = changed
	r.FilesFailed = failed
	r.CompletedAt = &now
}

// Fail marks the run failed.
func (r *Run) Fail() {
	now := time.Now().UTC()
	r.Status = StatusFailed
	r.CompletedAt = &now
}

// Repository stores runs in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository opens (or creates) the history database at dbPath.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts or updates a run by ID.
func (r *Repository) Save(run *Run) error {
	if run == nil {
		return fmt.Errorf("cannot save nil run")
	}
	if run.ID == "" {
		return fmt.Errorf("run must have an ID")
	}

	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(time.RFC3339Nano)
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (id, migration_type, root, dry_run, status,
			files_scanned, files_changed, files_failed, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			files_scanned = excluded.files_scanned,
			files_changed = excluded.files_changed,
			files_failed = excluded.files_failed,
			completed_at = excluded.completed_at`,
		run.ID, run.MigrationType, run.Root, run.DryRun, run.Status,
		run.FilesScanned, run.FilesChanged, run.FilesFailed,
		run.StartedAt.Format(time.RFC3339Nano), completedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get returns the run with the given ID.
func (r *Repository) Get(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, migration_type, root, dry_run, status,
			files_scanned, files_changed, files_failed, started_at, completed_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (r *Repository) List(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, migration_type, root, dry_run, status,
			files_scanned, files_changed, files_failed, started_at, completed_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt string
	var completedAt sql.NullString

	err := s.Scan(&run.ID, &run.MigrationType, &run.Root, &run.DryRun, &run.Status,
		&run.FilesScanned, &run.FilesChanged, &run.FilesFailed, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid completed_at: %w", err)
		}
		run.CompletedAt = &t
	}
	return &run, nil
}

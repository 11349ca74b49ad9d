package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gradewatch/gradewatch/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	kindReport = "report"
	kindState  = "state"
)

// SQLiteStore is a SQLite implementation of the SnapshotStore
// interface. Each snapshot kind occupies one row; a save replaces the
// previous snapshot wholesale, matching the report lifecycle.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			kind TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// SaveReport stores the latest grade report snapshot
func (s *SQLiteStore) SaveReport(ctx context.Context, report *core.GradeReport) error {
	return s.save(ctx, kindReport, report)
}

// LoadReport retrieves the latest grade report snapshot
func (s *SQLiteStore) LoadReport(ctx context.Context) (*core.GradeReport, error) {
	var report core.GradeReport
	found, err := s.load(ctx, kindReport, &report)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoReport
	}
	return &report, nil
}

// LoadState retrieves the alert state, empty on first run
func (s *SQLiteStore) LoadState(ctx context.Context) (core.AlertState, error) {
	var state core.AlertState
	if _, err := s.load(ctx, kindState, &state); err != nil {
		return core.AlertState{}, err
	}
	return state, nil
}

// SaveState stores the alert state
func (s *SQLiteStore) SaveState(ctx context.Context, state core.AlertState) error {
	return s.save(ctx, kindState, state)
}

func (s *SQLiteStore) save(ctx context.Context, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (kind, payload, updated_at)
		VALUES (?, ?, ?)
	`, kind, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", kind, err)
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, kind string, v any) (bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots WHERE kind = ?
	`, kind).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s snapshot: %w", kind, err)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	return true, nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

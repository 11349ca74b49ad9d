package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the SnapshotStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			kind VARCHAR(32) PRIMARY KEY,
			payload MEDIUMTEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// SaveReport stores the latest grade report snapshot
func (s *MySQLStore) SaveReport(ctx context.Context, report *core.GradeReport) error {
	return s.save(ctx, kindReport, report)
}

// LoadReport retrieves the latest grade report snapshot
func (s *MySQLStore) LoadReport(ctx context.Context) (*core.GradeReport, error) {
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
func (s *MySQLStore) LoadState(ctx context.Context) (core.AlertState, error) {
	var state core.AlertState
	if _, err := s.load(ctx, kindState, &state); err != nil {
		return core.AlertState{}, err
	}
	return state, nil
}

// SaveState stores the alert state
func (s *MySQLStore) SaveState(ctx context.Context, state core.AlertState) error {
	return s.save(ctx, kindState, state)
}

func (s *MySQLStore) save(ctx context.Context, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (kind, payload, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)
	`, kind, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", kind, err)
	}
	return nil
}

func (s *MySQLStore) load(ctx context.Context, kind string, v any) (bool, error) {
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
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}

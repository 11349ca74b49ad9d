package store

import (
	"context"
	"errors"
	"sync"

	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// ErrNoReport is returned when no grade report has been persisted yet.
var ErrNoReport = errors.New("no grade report stored")

// MemoryStore is an in-memory implementation of the SnapshotStore
// interface. State does not survive process restart, so every run
// starts from an empty alert state; fine for tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	report *core.GradeReport
	state  *core.AlertState
	logger *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		logger: logger,
	}
}

// SaveReport stores the latest grade report snapshot
func (s *MemoryStore) SaveReport(ctx context.Context, report *core.GradeReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *report
	s.report = &snapshot
	return nil
}

// LoadReport retrieves the latest grade report snapshot
func (s *MemoryStore) LoadReport(ctx context.Context) (*core.GradeReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return nil, ErrNoReport
	}
	snapshot := *s.report
	return &snapshot, nil
}

// LoadState retrieves the alert state, empty on first run
func (s *MemoryStore) LoadState(ctx context.Context) (core.AlertState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return core.AlertState{}, nil
	}
	return *s.state, nil
}

// SaveState stores the alert state
func (s *MemoryStore) SaveState(ctx context.Context, state core.AlertState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &state
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	reportKey = "gradewatch:report"
	stateKey  = "gradewatch:state"
)

// RedisStore is a Redis implementation of the SnapshotStore
// interface. Snapshots live under fixed keys with no expiry; the next
// run replaces them.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis store
func NewRedisStore(addr, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

// SaveReport stores the latest grade report snapshot
func (s *RedisStore) SaveReport(ctx context.Context, report *core.GradeReport) error {
	return s.save(ctx, reportKey, report)
}

// LoadReport retrieves the latest grade report snapshot
func (s *RedisStore) LoadReport(ctx context.Context) (*core.GradeReport, error) {
	var report core.GradeReport
	found, err := s.load(ctx, reportKey, &report)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoReport
	}
	return &report, nil
}

// LoadState retrieves the alert state, empty on first run
func (s *RedisStore) LoadState(ctx context.Context) (core.AlertState, error) {
	var state core.AlertState
	if _, err := s.load(ctx, stateKey, &state); err != nil {
		return core.AlertState{}, err
	}
	return state, nil
}

// SaveState stores the alert state
func (s *RedisStore) SaveState(ctx context.Context, state core.AlertState) error {
	return s.save(ctx, stateKey, state)
}

func (s *RedisStore) save(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string, v any) (bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return true, nil
}

// Stop closes the Redis connection
func (s *RedisStore) Stop() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}

package runner

import (
	"context"
	"errors"
	"time"

	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// IntervalRunner re-runs the pipeline on a fixed interval until the
// context is canceled. A failed pass is logged and retried on the
// next tick; only context cancellation ends the loop.
type IntervalRunner struct {
	service  *core.TrackerService
	interval time.Duration
	logger   *zap.Logger
}

// NewIntervalRunner creates a new interval runner
func NewIntervalRunner(service *core.TrackerService, interval time.Duration, logger *zap.Logger) *IntervalRunner {
	return &IntervalRunner{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run executes a pass immediately, then once per interval.
func (r *IntervalRunner) Run(ctx context.Context) error {
	r.logger.Info("Starting interval runner", zap.Duration("interval", r.interval))

	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-ctx.Done():
			r.logger.Info("Interval runner stopped")
			return nil
		}
	}
}

func (r *IntervalRunner) runOnce(ctx context.Context) {
	if err := r.service.Run(ctx); err != nil {
		if errors.Is(err, core.ErrEmptyReport) {
			// Keeps the previous snapshot; nothing was overwritten.
			r.logger.Warn("Pass produced no courses, snapshot unchanged")
			return
		}
		r.logger.Error("Tracking pass failed", zap.Error(err))
	}
}

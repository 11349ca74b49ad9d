package runner

import (
	"context"

	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// OnceRunner executes a single pipeline pass and returns. Suited to
// cron-style invocation where an external scheduler owns the cadence.
type OnceRunner struct {
	service *core.TrackerService
	logger  *zap.Logger
}

// NewOnceRunner creates a new one-shot runner
func NewOnceRunner(service *core.TrackerService, logger *zap.Logger) *OnceRunner {
	return &OnceRunner{
		service: service,
		logger:  logger,
	}
}

// Run executes one pass.
func (r *OnceRunner) Run(ctx context.Context) error {
	r.logger.Info("Running single tracking pass")
	return r.service.Run(ctx)
}

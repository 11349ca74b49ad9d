package factory

import (
	"fmt"

	"github.com/gradewatch/gradewatch/internal/adapters/runner"
	"github.com/gradewatch/gradewatch/internal/config"
	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/ports"
	"go.uber.org/zap"
)

// RunnerFactory creates pipeline runners based on configuration
type RunnerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.TrackerService
}

// NewRunnerFactory creates a new runner factory
func NewRunnerFactory(cfg *config.Config, logger *zap.Logger, service *core.TrackerService) *RunnerFactory {
	return &RunnerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateRunner creates a pipeline runner based on the configuration
func (f *RunnerFactory) CreateRunner() (ports.Runner, error) {
	mode := f.cfg.GetString("runner.mode")

	switch mode {
	case "once":
		return runner.NewOnceRunner(f.service, f.logger), nil
	case "interval":
		interval, err := f.cfg.GetDuration("runner.interval")
		if err != nil {
			return nil, fmt.Errorf("invalid runner interval: %w", err)
		}
		return runner.NewIntervalRunner(f.service, interval, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported runner mode: %s", mode)
	}
}

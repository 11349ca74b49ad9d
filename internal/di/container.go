package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/gradewatch/gradewatch/internal/config"
	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/factory"
	"github.com/gradewatch/gradewatch/internal/logging"
	"github.com/gradewatch/gradewatch/internal/ports"
	"github.com/gradewatch/gradewatch/internal/senders"
	"github.com/gradewatch/gradewatch/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRunnerFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(f *factory.MailFactory) (core.MailSource, error) {
		return f.CreateMailSource()
	}); err != nil {
		return nil, err
	}

	// Register snapshot store
	if err := container.Provide(func(f *factory.StoreFactory) (core.SnapshotStore, error) {
		return f.CreateSnapshotStore()
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register sender checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SenderChecker {
		return senders.NewChecker(cfg.GetStringSlice("report.allowed_senders"), logger)
	}); err != nil {
		return nil, err
	}

	// Register tracker service
	if err := container.Provide(core.NewTrackerService); err != nil {
		return nil, err
	}

	// Register runner
	if err := container.Provide(func(f *factory.RunnerFactory) (ports.Runner, error) {
		return f.CreateRunner()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

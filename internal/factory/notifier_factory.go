package factory

import (
	"fmt"
	"time"

	"github.com/gradewatch/gradewatch/internal/adapters/notify"
	"github.com/gradewatch/gradewatch/internal/config"
	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

// NotifierFactory creates notifiers based on configuration
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier creates a notifier based on the configuration
func (f *NotifierFactory) CreateNotifier() (core.Notifier, error) {
	notifierType := f.cfg.GetString("notify.type")

	switch notifierType {
	case "console":
		return notify.NewConsoleNotifier(f.logger), nil
	case "discord":
		discordCfg := f.cfg.GetDiscord()
		timeout, err := time.ParseDuration(discordCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid discord timeout: %w", err)
		}
		return notify.NewDiscordNotifier(discordCfg.WebhookURL, discordCfg.DashboardURL, timeout, f.logger)
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", notifierType)
	}
}

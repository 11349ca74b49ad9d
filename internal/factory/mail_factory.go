package factory

import (
	"fmt"

	"github.com/gradewatch/gradewatch/internal/adapters/mail"
	"github.com/gradewatch/gradewatch/internal/config"
	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/utils"
	"go.uber.org/zap"
)

// MailFactory creates mail sources based on configuration
type MailFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewMailFactory creates a new mail factory
func NewMailFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *MailFactory {
	return &MailFactory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateMailSource creates a mail source based on the configuration
func (f *MailFactory) CreateMailSource() (core.MailSource, error) {
	sourceType := f.cfg.GetString("mail.source")

	switch sourceType {
	case "dir":
		return mail.NewDirSource(f.cfg.GetDir().Path, f.text, f.logger), nil
	case "imap":
		imapCfg := f.cfg.GetImap()
		if imapCfg.Username == "" || imapCfg.Password == "" {
			return nil, fmt.Errorf("imap source requires username and password")
		}
		return mail.NewImapSource(mail.ImapOptions{
			Host:     imapCfg.Host,
			Port:     imapCfg.Port,
			Username: imapCfg.Username,
			Password: imapCfg.Password,
			Mailbox:  imapCfg.Mailbox,
			DaysBack: imapCfg.DaysBack,
		}, f.text, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail source: %s", sourceType)
	}
}

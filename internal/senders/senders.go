package senders

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Checker decides whether an email came from the school information
// system. Entries may be full addresses ("pwsupport@unionsd.org") or
// bare domains ("unionsd.org").
type Checker struct {
	entries []string
	logger  *zap.Logger
}

// NewChecker creates a new sender checker
func NewChecker(entries []string, logger *zap.Logger) *Checker {
	// Normalize entries (lowercase)
	normalized := make([]string, len(entries))
	for i, entry := range entries {
		normalized[i] = strings.ToLower(strings.TrimSpace(entry))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized sender checker", zap.Strings("senders", normalized))
	}

	return &Checker{
		entries: normalized,
		logger:  logger,
	}
}

// IsReportSender checks if the sender matches a configured entry. An
// empty entry list accepts everything.
func (c *Checker) IsReportSender(from string) bool {
	if len(c.entries) == 0 {
		return true
	}

	addr := strings.ToLower(strings.TrimSpace(from))
	if parsed, err := mail.ParseAddress(from); err == nil {
		addr = strings.ToLower(parsed.Address)
	}

	domain := ""
	if parts := strings.Split(addr, "@"); len(parts) == 2 {
		domain = parts[1]
	}

	for _, entry := range c.entries {
		if entry == addr || (domain != "" && entry == domain) {
			if c.logger != nil {
				c.logger.Debug("Sender matched",
					zap.String("entry", entry),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}

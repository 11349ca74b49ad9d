package mail

import (
	"context"
	"fmt"
	netmail "net/mail"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/utils"
	"go.uber.org/zap"
)

// ImapOptions holds the connection settings for the IMAP source.
type ImapOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	DaysBack int
}

// ImapSource fetches progress-report emails from an IMAP mailbox.
// Each Fetch opens a fresh connection; the school system sends a
// handful of emails per day, so there is nothing worth pooling.
type ImapSource struct {
	opts   ImapOptions
	text   *utils.TextProcessor
	logger *zap.Logger
}

// NewImapSource creates a new IMAP mail source
func NewImapSource(opts ImapOptions, text *utils.TextProcessor, logger *zap.Logger) *ImapSource {
	return &ImapSource{
		opts:   opts,
		text:   text,
		logger: logger,
	}
}

// Fetch retrieves message bodies received within the configured
// look-back window, ordered by arrival time.
func (s *ImapSource) Fetch(ctx context.Context) ([]core.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial %s: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(s.opts.Username, s.opts.Password); err != nil {
		return nil, fmt.Errorf("imap login: %w", err)
	}

	if _, err := c.Select(s.opts.Mailbox, true); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", s.opts.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	if s.opts.DaysBack > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -s.opts.DaysBack)
	}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	s.logger.Info("IMAP search complete",
		zap.String("mailbox", s.opts.Mailbox),
		zap.Int("matches", len(ids)))
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope, imap.FetchInternalDate}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var emails []core.Email
	for msg := range messages {
		email, ok := s.convertMessage(msg, section)
		if ok {
			emails = append(emails, email)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch: %w", err)
	}

	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.Before(emails[j].ReceivedAt)
	})
	return emails, nil
}

func (s *ImapSource) convertMessage(msg *imap.Message, section *imap.BodySectionName) (core.Email, bool) {
	r := msg.GetBody(section)
	if r == nil {
		return core.Email{}, false
	}

	m, err := netmail.ReadMessage(r)
	if err != nil {
		s.logger.Warn("Skipping unparseable message", zap.Error(err))
		return core.Email{}, false
	}
	body, err := extractPlainText(m)
	if err != nil || strings.TrimSpace(body) == "" {
		return core.Email{}, false
	}

	from := ""
	subject := ""
	if msg.Envelope != nil {
		subject = msg.Envelope.Subject
		if len(msg.Envelope.From) > 0 {
			from = msg.Envelope.From[0].Address()
		}
	}

	return core.Email{
		From:       from,
		Subject:    subject,
		Body:       s.text.NormalizeBody(body),
		ReceivedAt: msg.InternalDate,
	}, true
}

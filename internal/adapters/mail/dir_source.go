package mail

import (
	"bufio"
	"context"
	"fmt"
	"io"
	netmail "net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/gradewatch/gradewatch/internal/utils"
	"go.uber.org/zap"
)

// DirSource reads progress-report emails from a directory. Raw
// messages use the .eml extension, already-decoded bodies use .txt.
// Useful for local runs and replaying saved reports.
type DirSource struct {
	dir    string
	text   *utils.TextProcessor
	logger *zap.Logger
}

// NewDirSource creates a new directory mail source
func NewDirSource(dir string, text *utils.TextProcessor, logger *zap.Logger) *DirSource {
	return &DirSource{
		dir:    dir,
		text:   text,
		logger: logger,
	}
}

// Fetch reads every .eml and .txt file in the directory, ordered by
// arrival time so later reports win course deduplication downstream.
func (s *DirSource) Fetch(ctx context.Context) ([]core.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read mail directory: %w", err)
	}

	var emails []core.Email
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".eml" && ext != ".txt" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		email, err := s.readFile(path, ext)
		if err != nil {
			s.logger.Warn("Skipping unreadable mail file",
				zap.String("file", path),
				zap.Error(err))
			continue
		}
		emails = append(emails, email)
	}

	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.Before(emails[j].ReceivedAt)
	})

	s.logger.Info("Loaded emails from directory",
		zap.String("dir", s.dir),
		zap.Int("count", len(emails)))
	return emails, nil
}

func (s *DirSource) readFile(path, ext string) (core.Email, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Email{}, err
	}
	defer f.Close()

	received := time.Now()
	if info, err := f.Stat(); err == nil {
		received = info.ModTime()
	}

	if ext == ".txt" {
		data, err := io.ReadAll(f)
		if err != nil {
			return core.Email{}, err
		}
		return core.Email{
			Body:       s.text.NormalizeBody(string(data)),
			ReceivedAt: received,
		}, nil
	}

	msg, err := netmail.ReadMessage(bufio.NewReader(f))
	if err != nil {
		return core.Email{}, err
	}
	body, err := extractPlainText(msg)
	if err != nil {
		return core.Email{}, err
	}
	if d, err := msg.Header.Date(); err == nil {
		received = d
	}

	return core.Email{
		From:       msg.Header.Get("From"),
		Subject:    msg.Header.Get("Subject"),
		Body:       s.text.NormalizeBody(body),
		ReceivedAt: received,
	}, nil
}

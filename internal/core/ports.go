package core

import (
	"context"
	"time"
)

// Email is one retrieved progress-report message, already decoded to
// plain text.
type Email struct {
	From       string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// MailSource retrieves progress-report emails.
type MailSource interface {
	Fetch(ctx context.Context) ([]Email, error)
}

// SnapshotStore persists the latest grade report and the alert state
// between runs.
type SnapshotStore interface {
	SaveReport(ctx context.Context, report *GradeReport) error
	LoadReport(ctx context.Context) (*GradeReport, error)
	LoadState(ctx context.Context) (AlertState, error)
	SaveState(ctx context.Context, state AlertState) error
}

// Notifier delivers alert events to whatever channel is configured.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// SenderChecker decides whether an email came from the school
// information system.
type SenderChecker interface {
	IsReportSender(from string) bool
}

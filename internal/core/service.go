package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TrackerService runs the grade-tracking pipeline: fetch report
// emails, parse each into a course, aggregate into one snapshot, diff
// against the persisted alert state, deliver events, persist.
type TrackerService struct {
	mail     MailSource
	store    SnapshotStore
	notifier Notifier
	logger   *zap.Logger
	senders  SenderChecker
}

// NewTrackerService creates a new tracker service.
func NewTrackerService(
	mailSource MailSource,
	store SnapshotStore,
	notifier Notifier,
	logger *zap.Logger,
	senders SenderChecker,
) *TrackerService {
	return &TrackerService{
		mail:     mailSource,
		store:    store,
		notifier: notifier,
		logger:   logger,
		senders:  senders,
	}
}

// Run executes one full pipeline pass. A pass that parses zero
// courses fails with ErrEmptyReport before touching the store, so a
// previously good snapshot is never overwritten by an empty one.
func (s *TrackerService) Run(ctx context.Context) error {
	emails, err := s.mail.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch mail: %w", err)
	}
	s.logger.Info("Fetched progress-report emails", zap.Int("count", len(emails)))

	var parsed []*ParsedReport
	for _, em := range emails {
		if !s.senders.IsReportSender(em.From) {
			s.logger.Debug("Skipping email from unrecognized sender",
				zap.String("sender", em.From))
			continue
		}

		p, err := ParseReport(em.Body, em.ReceivedAt)
		if err != nil {
			// Fatal for this course only; the rest of the run continues.
			s.logger.Warn("Dropping unparseable report",
				zap.String("subject", em.Subject),
				zap.Error(err))
			continue
		}
		for _, lineErr := range p.LineErrors {
			s.logger.Warn("Skipped assignment line",
				zap.String("course", p.Course.Name),
				zap.Error(lineErr))
		}
		parsed = append(parsed, p)
	}

	report := Aggregate(parsed, time.Now().UTC())
	if report.IsEmpty() {
		return ErrEmptyReport
	}

	if err := s.store.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	state, err := s.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load alert state: %w", err)
	}

	events, newState := Diff(report, state)
	for _, ev := range events {
		if err := s.notifier.Notify(ctx, ev); err != nil {
			// Delivery failure must not block the state write.
			s.logger.Error("Failed to deliver alert",
				zap.String("kind", ev.Kind()),
				zap.Error(err))
		}
	}

	if err := s.store.SaveState(ctx, newState); err != nil {
		return fmt.Errorf("save alert state: %w", err)
	}

	s.logger.Info("Run complete",
		zap.Int("courses", len(report.Courses)),
		zap.Int("events", len(events)),
		zap.Int("outstanding_missing", len(newState.AlertedMissing)))
	return nil
}

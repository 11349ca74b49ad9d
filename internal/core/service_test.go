package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gradewatch/gradewatch/internal/senders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMail struct {
	emails []Email
	err    error
}

func (f *fakeMail) Fetch(ctx context.Context) ([]Email, error) {
	return f.emails, f.err
}

type fakeStore struct {
	state       AlertState
	savedState  *AlertState
	savedReport *GradeReport
}

func (f *fakeStore) SaveReport(ctx context.Context, report *GradeReport) error {
	f.savedReport = report
	return nil
}

func (f *fakeStore) LoadReport(ctx context.Context) (*GradeReport, error) {
	return f.savedReport, nil
}

func (f *fakeStore) LoadState(ctx context.Context) (AlertState, error) {
	return f.state, nil
}

func (f *fakeStore) SaveState(ctx context.Context, state AlertState) error {
	f.savedState = &state
	return nil
}

type fakeNotifier struct {
	events []Event
	err    error
}

func (f *fakeNotifier) Notify(ctx context.Context, event Event) error {
	f.events = append(f.events, event)
	return f.err
}

const reportBody = "Course: Math 6\n" +
	"Student: Layla H.\n" +
	"Grading period: Q3\n" +
	"    01/21/2026  6.1.1 RP      Grade: F  (0/10 = 0%)\n"

func newTestService(mail *fakeMail, store *fakeStore, notifier *fakeNotifier, allowed []string) *TrackerService {
	checker := senders.NewChecker(allowed, zap.NewNop())
	return NewTrackerService(mail, store, notifier, zap.NewNop(), checker)
}

func TestTrackerService_RunDeliversAndPersists(t *testing.T) {
	mail := &fakeMail{emails: []Email{{
		From:       "pwsupport@unionsd.org",
		Body:       reportBody,
		ReceivedAt: time.Date(2026, 1, 27, 16, 0, 0, 0, time.UTC),
	}}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := newTestService(mail, store, notifier, nil)

	require.NoError(t, svc.Run(context.Background()))

	require.NotNil(t, store.savedReport)
	assert.Equal(t, "Layla H.", store.savedReport.Student)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "missing", notifier.events[0].Kind())

	require.NotNil(t, store.savedState)
	assert.Equal(t, []string{"Math 6::6.1.1 RP::2026-01-21"}, store.savedState.AlertedMissing)
}

func TestTrackerService_EmptyRunNeverTouchesStore(t *testing.T) {
	mail := &fakeMail{}
	store := &fakeStore{}
	svc := newTestService(mail, store, &fakeNotifier{}, nil)

	err := svc.Run(context.Background())

	assert.True(t, errors.Is(err, ErrEmptyReport))
	assert.Nil(t, store.savedReport)
	assert.Nil(t, store.savedState)
}

func TestTrackerService_NotifyFailureStillWritesState(t *testing.T) {
	mail := &fakeMail{emails: []Email{{Body: reportBody, ReceivedAt: time.Now()}}}
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("webhook down")}
	svc := newTestService(mail, store, notifier, nil)

	require.NoError(t, svc.Run(context.Background()))
	require.NotNil(t, store.savedState)
	assert.Len(t, store.savedState.AlertedMissing, 1)
}

func TestTrackerService_FiltersUnknownSenders(t *testing.T) {
	mail := &fakeMail{emails: []Email{{
		From:       "spammer@example.com",
		Body:       reportBody,
		ReceivedAt: time.Now(),
	}}}
	store := &fakeStore{}
	svc := newTestService(mail, store, &fakeNotifier{}, []string{"pwsupport@unionsd.org"})

	err := svc.Run(context.Background())

	assert.True(t, errors.Is(err, ErrEmptyReport))
	assert.Nil(t, store.savedReport)
}

func TestTrackerService_AcceptsSenderByDomain(t *testing.T) {
	mail := &fakeMail{emails: []Email{{
		From:       "PowerSchool <pwsupport@unionsd.org>",
		Body:       reportBody,
		ReceivedAt: time.Now(),
	}}}
	store := &fakeStore{}
	svc := newTestService(mail, store, &fakeNotifier{}, []string{"unionsd.org"})

	require.NoError(t, svc.Run(context.Background()))
	require.NotNil(t, store.savedReport)
}

func TestTrackerService_DropsUnparseableAndContinues(t *testing.T) {
	mail := &fakeMail{emails: []Email{
		{Body: "garbage with no structure", ReceivedAt: time.Now()},
		{Body: reportBody, ReceivedAt: time.Now()},
	}}
	store := &fakeStore{}
	svc := newTestService(mail, store, &fakeNotifier{}, nil)

	require.NoError(t, svc.Run(context.Background()))
	require.NotNil(t, store.savedReport)
	assert.Len(t, store.savedReport.Courses, 1)
}

func TestTrackerService_SecondRunIsQuiet(t *testing.T) {
	mail := &fakeMail{emails: []Email{{Body: reportBody, ReceivedAt: time.Now()}}}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := newTestService(mail, store, notifier, nil)

	require.NoError(t, svc.Run(context.Background()))
	store.state = *store.savedState
	require.NoError(t, svc.Run(context.Background()))

	// The first run alerted; an unchanged report must not alert again.
	assert.Len(t, notifier.events, 1)
}

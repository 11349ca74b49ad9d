package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gradewatch/gradewatch/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func captureWebhook(t *testing.T, status int) (*httptest.Server, *webhookPayload) {
	t.Helper()
	payload := &webhookPayload{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, payload))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, payload
}

func missingEvent() core.MissingAlert {
	return core.MissingAlert{
		Student: "Layla H.",
		Courses: []core.CourseAlerts{{
			Course: "Math 6",
			Assignments: []core.AlertItem{
				{Name: "6.1.1 RP", Date: "2026-01-21", Key: "Math 6::6.1.1 RP::2026-01-21"},
				{Name: "6.2.1", Date: "2026-01-27", Key: "Math 6::6.2.1::2026-01-27"},
			},
		}},
		StillOutstanding: 3,
	}
}

func TestDiscordNotifier_MissingEmbed(t *testing.T) {
	srv, payload := captureWebhook(t, http.StatusNoContent)
	n, err := NewDiscordNotifier(srv.URL, "https://ps.example.com/dashboard", time.Second, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, n.Notify(context.Background(), missingEvent()))

	require.Len(t, payload.Embeds, 1)
	e := payload.Embeds[0]
	assert.Equal(t, "New Missing Assignments for Layla", e.Title)
	assert.Equal(t, colorMissing, e.Color)
	assert.Contains(t, e.Description, "**Math 6**")
	assert.Contains(t, e.Description, "- 6.1.1 RP (2026-01-21)")
	assert.Contains(t, e.Description, "3 other missing")
	assert.Contains(t, e.Description, "[View Dashboard](https://ps.example.com/dashboard)")
}

func TestDiscordNotifier_ResolvedEmbed(t *testing.T) {
	srv, payload := captureWebhook(t, http.StatusOK)
	n, err := NewDiscordNotifier(srv.URL, "", time.Second, zap.NewNop())
	require.NoError(t, err)

	event := core.ResolvedAlert{
		Student: "Layla H.",
		Courses: []core.CourseAlerts{{
			Course: "Math 6",
			Assignments: []core.AlertItem{
				{Name: "6.1.1 RP", Date: "2026-01-21", Key: "Math 6::6.1.1 RP::2026-01-21"},
			},
		}},
	}
	require.NoError(t, n.Notify(context.Background(), event))

	require.Len(t, payload.Embeds, 1)
	e := payload.Embeds[0]
	assert.Equal(t, "Assignments Completed for Layla", e.Title)
	assert.Equal(t, colorResolved, e.Color)
	assert.Contains(t, e.Description, "- 6.1.1 RP (Math 6, 2026-01-21)")
	assert.NotContains(t, e.Description, "View Dashboard")
}

func TestDiscordNotifier_NoOutstandingLineWhenZero(t *testing.T) {
	srv, payload := captureWebhook(t, http.StatusNoContent)
	n, err := NewDiscordNotifier(srv.URL, "", time.Second, zap.NewNop())
	require.NoError(t, err)

	event := missingEvent()
	event.StillOutstanding = 0
	require.NoError(t, n.Notify(context.Background(), event))

	assert.NotContains(t, payload.Embeds[0].Description, "other missing")
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	srv, _ := captureWebhook(t, http.StatusTooManyRequests)
	n, err := NewDiscordNotifier(srv.URL, "", time.Second, zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), missingEvent())
	assert.ErrorContains(t, err, "429")
}

func TestNewDiscordNotifier_RequiresURL(t *testing.T) {
	_, err := NewDiscordNotifier("", "", time.Second, zap.NewNop())
	assert.Error(t, err)
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gradewatch/gradewatch/internal/core"
	"go.uber.org/zap"
)

const (
	colorMissing  = 0xFF0000
	colorResolved = 0x00FF00
)

// DiscordNotifier posts alert events as embeds to a Discord webhook.
type DiscordNotifier struct {
	webhookURL   string
	dashboardURL string
	client       *http.Client
	logger       *zap.Logger
}

// NewDiscordNotifier creates a new Discord webhook notifier
func NewDiscordNotifier(webhookURL, dashboardURL string, timeout time.Duration, logger *zap.Logger) (*DiscordNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("discord webhook URL is required")
	}
	return &DiscordNotifier{
		webhookURL:   webhookURL,
		dashboardURL: dashboardURL,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}, nil
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Notify posts one event to the webhook.
func (n *DiscordNotifier) Notify(ctx context.Context, event core.Event) error {
	var payload webhookPayload
	switch ev := event.(type) {
	case core.MissingAlert:
		payload = n.buildMissingPayload(ev)
	case core.ResolvedAlert:
		payload = n.buildResolvedPayload(ev)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind())
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info("Posted alert to Discord", zap.String("kind", event.Kind()))
	return nil
}

func (n *DiscordNotifier) buildMissingPayload(ev core.MissingAlert) webhookPayload {
	var lines []string
	for _, group := range ev.Courses {
		lines = append(lines, fmt.Sprintf("**%s**", group.Course))
		for _, a := range group.Assignments {
			lines = append(lines, fmt.Sprintf("- %s (%s)", a.Name, a.Date))
		}
	}
	if ev.StillOutstanding > 0 {
		lines = append(lines, fmt.Sprintf("\n%d other missing", ev.StillOutstanding))
	}
	if n.dashboardURL != "" {
		lines = append(lines, fmt.Sprintf("\n[View Dashboard](%s)", n.dashboardURL))
	}

	return webhookPayload{Embeds: []embed{{
		Title:       fmt.Sprintf("New Missing Assignments for %s", firstName(ev.Student)),
		Description: strings.Join(lines, "\n"),
		Color:       colorMissing,
	}}}
}

func (n *DiscordNotifier) buildResolvedPayload(ev core.ResolvedAlert) webhookPayload {
	var lines []string
	for _, group := range ev.Courses {
		for _, a := range group.Assignments {
			lines = append(lines, fmt.Sprintf("- %s (%s, %s)", a.Name, group.Course, a.Date))
		}
	}
	if n.dashboardURL != "" {
		lines = append(lines, fmt.Sprintf("\n[View Dashboard](%s)", n.dashboardURL))
	}

	return webhookPayload{Embeds: []embed{{
		Title:       fmt.Sprintf("Assignments Completed for %s", firstName(ev.Student)),
		Description: strings.Join(lines, "\n"),
		Color:       colorResolved,
	}}}
}

func firstName(student string) string {
	if fields := strings.Fields(student); len(fields) > 0 {
		return fields[0]
	}
	return "Student"
}

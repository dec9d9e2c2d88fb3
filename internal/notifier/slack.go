package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/amishk599/visioncrafter/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier announces crafted documents in a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	maxWait    time.Duration // cap on a Retry-After wait
}

// NewSlackNotifier returns a notifier that posts to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		maxWait:    10 * time.Second,
	}
}

// Notify posts a single Block Kit message. A 429 is retried once after Retry-After.
func (s *SlackNotifier) Notify(t model.Transcript) error {
	body, err := json.Marshal(buildPayload(t))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		wait := time.Duration(max(secs, 1)) * time.Second
		wait = min(wait, s.maxWait)
		s.logger.Warn("slack rate limited, retrying", "retry_after", wait)
		time.Sleep(wait)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "title", t.Title, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "title", t.Title)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a dummy transcript to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.Notify(model.Transcript{
		SessionID: "test-001",
		Title:     "Test Notification: Integration Verified",
		Path:      "jobs/Test Notification.md",
		Model:     "test",
		CreatedAt: time.Now(),
	})
}

func buildPayload(t model.Transcript) slackPayload {
	created := "Just now"
	if !t.CreatedAt.IsZero() {
		created = t.CreatedAt.Format(time.RFC1123)
	}

	return slackPayload{Blocks: []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "🔦 New job charter: " + t.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*File:*\n`" + filepath.Base(t.Path) + "`"},
				{Type: "mrkdwn", Text: "*Created:*\n" + created},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Model:*\n" + t.Model},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Usage:*\n%d tokens (~$%.2f)", t.Tokens, t.Cost)},
			},
		},
		{Type: "divider"},
	}}
}

package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Slack posts articles to a Slack incoming webhook.
type Slack struct {
	client     *resty.Client
	webhookURL string
}

// NewSlack builds the webhook sink.
func NewSlack(webhookURL string, timeout time.Duration) *Slack {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Slack{
		client:     resty.New().SetTimeout(timeout),
		webhookURL: webhookURL,
	}
}

// Name implements Sink.
func (s *Slack) Name() string { return "slack" }

// Deliver posts one article as a webhook payload.
func (s *Slack) Deliver(ctx context.Context, msg Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload(msg)).
		Post(s.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode(), bodySnippet(resp.Body()))
	}
	return nil
}

func payload(msg Message) map[string]any {
	var b strings.Builder
	fmt.Fprintf(&b, "*<%s|%s>*\n", msg.URL, msg.Title)
	if len(msg.Authors) > 0 {
		fmt.Fprintf(&b, "_%s_\n", strings.Join(msg.Authors, ", "))
	}
	b.WriteString(msg.Summary)

	return map[string]any{
		"text": b.String(),
		"blocks": []map[string]any{{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": b.String(),
			},
		}},
	}
}

func bodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

package notify

import (
	"context"
	"net/http"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// SlackNotifier implements Notifier via a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlackOption configures a SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackHTTPClient sets a custom HTTP client.
func WithSlackHTTPClient(c *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = c
	}
}

// slackWebhookPayload is the incoming-webhook JSON structure.
type slackWebhookPayload struct {
	Text string `json:"text"`
}

// Name identifies the transport in logs and metrics.
func (s *SlackNotifier) Name() string { return "slack" }

// Send posts the event as a plain-text Slack message.
func (s *SlackNotifier) Send(ctx context.Context, event domain.PriceEvent) error {
	payload := slackWebhookPayload{Text: Message(event)}
	return postJSON(ctx, s.client, s.webhookURL, "slack", payload)
}

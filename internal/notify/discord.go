package notify

import (
	"context"
	"net/http"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// DiscordNotifier implements Notifier via a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithDiscordHTTPClient sets a custom HTTP client.
func WithDiscordHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Content string `json:"content"`
}

// Name identifies the transport in logs and metrics.
func (d *DiscordNotifier) Name() string { return "discord" }

// Send posts the event as a Discord message.
func (d *DiscordNotifier) Send(ctx context.Context, event domain.PriceEvent) error {
	payload := discordWebhookPayload{Content: Message(event)}
	return postJSON(ctx, d.client, d.webhookURL, "discord", payload)
}

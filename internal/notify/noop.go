package notify

import (
	"context"
	"log/slog"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded events. It is used
// when no webhook transport is configured: events are still computed and
// recorded in state, just not delivered anywhere.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a NoOpNotifier.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Name identifies the transport in logs and metrics.
func (n *NoOpNotifier) Name() string { return "noop" }

// Send logs the event and drops it.
func (n *NoOpNotifier) Send(_ context.Context, event domain.PriceEvent) error {
	n.log.Info("notification discarded (no transports configured)",
		"kind", event.Kind,
		"product", event.Product,
		"price", event.NewPrice,
	)
	return nil
}

package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ksuda/pricewatch/internal/metrics"
	domain "github.com/ksuda/pricewatch/pkg/types"
)

// MultiNotifier fans an event out to every configured transport. Transports
// are independent: a failing one is logged and counted, and the rest are
// still attempted.
type MultiNotifier struct {
	transports []Notifier
	log        *slog.Logger
}

// NewMultiNotifier creates a MultiNotifier over the given transports.
func NewMultiNotifier(log *slog.Logger, transports ...Notifier) *MultiNotifier {
	return &MultiNotifier{transports: transports, log: log}
}

// Name identifies the transport in logs and metrics.
func (m *MultiNotifier) Name() string { return "multi" }

// Send attempts delivery on every transport and joins the failures. The
// caller treats the returned error as non-fatal.
func (m *MultiNotifier) Send(ctx context.Context, event domain.PriceEvent) error {
	var errs []error
	for _, t := range m.transports {
		if err := t.Send(ctx, event); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(t.Name()).Inc()
			m.log.Error("notification transport failed",
				"transport", t.Name(),
				"product", event.Product,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}

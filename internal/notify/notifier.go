// Package notify defines the notification interface and webhook
// implementations for price alerts.
package notify

import (
	"context"
	"fmt"
	"strconv"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// Notifier delivers a price event to one transport (or fans it out to
// several). Send failures are per-transport and never abort a run.
type Notifier interface {
	Send(ctx context.Context, event domain.PriceEvent) error
	Name() string
}

// Message renders the human-readable alert text shared by all transports:
// product name, URL, old/new price, and the target for target alerts.
func Message(e domain.PriceEvent) string {
	switch e.Kind {
	case domain.EventTargetReached:
		target := "?"
		if e.Target != nil {
			target = formatPrice(*e.Target)
		}
		return fmt.Sprintf(
			"Target price reached: %s\nCurrent price: %s (target: %s or less)\n%s",
			e.Product, formatPrice(e.NewPrice), target, e.URL,
		)
	default:
		old := "?"
		diff := ""
		if e.OldPrice != nil {
			old = formatPrice(*e.OldPrice)
			diff = fmt.Sprintf(" (%+g)", e.NewPrice-*e.OldPrice)
		}
		return fmt.Sprintf(
			"Price drop: %s\nPrevious: %s -> Now: %s%s\n%s",
			e.Product, old, formatPrice(e.NewPrice), diff, e.URL,
		)
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

package engine

import (
	"time"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// Decide applies the notification rules for one product and returns at most
// one event plus the state to persist. A nil returned state means nothing
// should be recorded (extraction failed and no prior entry existed).
//
// Rule order, first match wins:
//  1. Failed reading: no event, prior state passed through untouched.
//  2. First successful observation: record the price as the baseline, never
//     notify. TargetNotified starts true when the baseline is already at or
//     below the target, so a later unchanged price cannot re-trigger.
//  3. New price below the prior price: PRICE_DROP.
//  4. Target configured, new price at or below it, not yet notified:
//     TARGET_REACHED, and TargetNotified latches true.
//
// TargetNotified never reverts to false, even if the price rises back above
// the target afterwards.
func Decide(
	cfg domain.ProductConfig,
	reading domain.PriceReading,
	prior *domain.ProductState,
	now time.Time,
) (*domain.PriceEvent, *domain.ProductState) {
	if !reading.OK() {
		return nil, prior
	}

	price := reading.Price

	if prior == nil || prior.LastPrice == nil {
		next := domain.ProductState{
			LastPrice:      &price,
			TargetNotified: cfg.TargetPrice != nil && price <= *cfg.TargetPrice,
			URL:            cfg.URL,
			UpdatedAt:      now,
		}
		if prior != nil && prior.TargetNotified {
			next.TargetNotified = true
		}
		return nil, &next
	}

	last := *prior.LastPrice
	next := domain.ProductState{
		LastPrice:      &price,
		TargetNotified: prior.TargetNotified,
		URL:            cfg.URL,
		UpdatedAt:      now,
	}

	switch {
	case price < last:
		return newEvent(domain.EventPriceDrop, cfg, last, price), &next

	case cfg.TargetPrice != nil && price <= *cfg.TargetPrice && !prior.TargetNotified:
		next.TargetNotified = true
		return newEvent(domain.EventTargetReached, cfg, last, price), &next
	}

	return nil, &next
}

func newEvent(kind domain.EventKind, cfg domain.ProductConfig, old, price float64) *domain.PriceEvent {
	return &domain.PriceEvent{
		Kind:     kind,
		Product:  cfg.Name,
		URL:      cfg.URL,
		OldPrice: &old,
		NewPrice: price,
		Target:   cfg.TargetPrice,
	}
}

package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fp(v float64) *float64 {
	return &v
}

func product(target *float64) domain.ProductConfig {
	return domain.ProductConfig{
		Name:        "WidgetA",
		URL:         "https://shop.example.com/widget-a",
		Selector:    ".price",
		TargetPrice: target,
	}
}

func failedReading() domain.PriceReading {
	return domain.PriceReading{
		Failure: domain.FailureFetch,
		Err:     errors.New("timeout"),
	}
}

func TestDecide_FirstObservationNeverNotifies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		target             *float64
		price              float64
		wantTargetNotified bool
	}{
		{name: "no target", target: nil, price: 500, wantTargetNotified: false},
		{name: "price above target", target: fp(900), price: 1200, wantTargetNotified: false},
		{name: "price below target", target: fp(900), price: 500, wantTargetNotified: true},
		{name: "price exactly at target", target: fp(900), price: 900, wantTargetNotified: true},
		{name: "zero price", target: fp(900), price: 0, wantTargetNotified: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			event, next := Decide(product(tt.target), domain.PriceReading{Price: tt.price}, nil, testNow)

			assert.Nil(t, event, "first sight must never notify")
			require.NotNil(t, next)
			require.NotNil(t, next.LastPrice)
			assert.Equal(t, tt.price, *next.LastPrice)
			assert.Equal(t, tt.wantTargetNotified, next.TargetNotified)
			assert.Equal(t, "https://shop.example.com/widget-a", next.URL)
			assert.Equal(t, testNow, next.UpdatedAt)
		})
	}
}

func TestDecide_FailedReadingLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	prior := &domain.ProductState{
		LastPrice:      fp(1000),
		TargetNotified: true,
		UpdatedAt:      testNow.Add(-24 * time.Hour),
	}

	event, next := Decide(product(fp(900)), failedReading(), prior, testNow)

	assert.Nil(t, event)
	assert.Same(t, prior, next, "failure must pass prior state through unchanged")
}

func TestDecide_FailedReadingWithoutPriorRecordsNothing(t *testing.T) {
	t.Parallel()

	event, next := Decide(product(nil), failedReading(), nil, testNow)

	assert.Nil(t, event)
	assert.Nil(t, next, "a failed first attempt must not create a state entry")
}

func TestDecide_PriceDrop(t *testing.T) {
	t.Parallel()

	prior := &domain.ProductState{LastPrice: fp(1000)}

	event, next := Decide(product(nil), domain.PriceReading{Price: 850}, prior, testNow)

	require.NotNil(t, event)
	assert.Equal(t, domain.EventPriceDrop, event.Kind)
	assert.Equal(t, "WidgetA", event.Product)
	require.NotNil(t, event.OldPrice)
	assert.Equal(t, float64(1000), *event.OldPrice)
	assert.Equal(t, float64(850), event.NewPrice)

	require.NotNil(t, next)
	assert.Equal(t, float64(850), *next.LastPrice)
	assert.False(t, next.TargetNotified)
}

func TestDecide_DropBeatsTarget(t *testing.T) {
	t.Parallel()

	// Prior 1000, target 900, new 850: both rules apply, drop fires and the
	// target branch is not reached, so TargetNotified stays false.
	prior := &domain.ProductState{LastPrice: fp(1000)}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 850}, prior, testNow)

	require.NotNil(t, event)
	assert.Equal(t, domain.EventPriceDrop, event.Kind)
	require.NotNil(t, next)
	assert.Equal(t, float64(850), *next.LastPrice)
	assert.False(t, next.TargetNotified)
}

func TestDecide_EqualPriceNoEvent(t *testing.T) {
	t.Parallel()

	prior := &domain.ProductState{LastPrice: fp(1000)}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 1000}, prior, testNow)

	assert.Nil(t, event)
	require.NotNil(t, next)
	assert.Equal(t, float64(1000), *next.LastPrice)
	assert.False(t, next.TargetNotified)
}

func TestDecide_TargetReachedOnRise(t *testing.T) {
	t.Parallel()

	// Price rose from 850 to 900: no drop, but 900 <= target 900 and not
	// yet notified, so the target alert fires.
	prior := &domain.ProductState{LastPrice: fp(850)}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 900}, prior, testNow)

	require.NotNil(t, event)
	assert.Equal(t, domain.EventTargetReached, event.Kind)
	assert.Equal(t, float64(900), event.NewPrice)
	require.NotNil(t, event.Target)
	assert.Equal(t, float64(900), *event.Target)

	require.NotNil(t, next)
	assert.True(t, next.TargetNotified, "target alert must latch the flag")
}

func TestDecide_TargetAlertFiresAtMostOnce(t *testing.T) {
	t.Parallel()

	prior := &domain.ProductState{LastPrice: fp(850), TargetNotified: true}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 880}, prior, testNow)

	assert.Nil(t, event, "already-notified target must not re-alert")
	require.NotNil(t, next)
	assert.True(t, next.TargetNotified)
}

func TestDecide_TargetNotifiedNeverResets(t *testing.T) {
	t.Parallel()

	// Price rises back above the target after a past alert: the flag stays.
	prior := &domain.ProductState{LastPrice: fp(880), TargetNotified: true}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 1200}, prior, testNow)

	assert.Nil(t, event)
	require.NotNil(t, next)
	assert.True(t, next.TargetNotified)
}

func TestDecide_PriorWithoutPriceIsBaseline(t *testing.T) {
	t.Parallel()

	// An entry can exist with no observed price yet; it still counts as a
	// first observation.
	prior := &domain.ProductState{LastPrice: nil}

	event, next := Decide(product(fp(900)), domain.PriceReading{Price: 500}, prior, testNow)

	assert.Nil(t, event)
	require.NotNil(t, next)
	assert.Equal(t, float64(500), *next.LastPrice)
	assert.True(t, next.TargetNotified)
}

func TestDecide_NegativePriceIsOrdinary(t *testing.T) {
	t.Parallel()

	prior := &domain.ProductState{LastPrice: fp(10)}

	event, next := Decide(product(nil), domain.PriceReading{Price: -5}, prior, testNow)

	require.NotNil(t, event)
	assert.Equal(t, domain.EventPriceDrop, event.Kind)
	assert.Equal(t, float64(-5), *next.LastPrice)
}

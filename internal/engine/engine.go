// Package engine orchestrates check cycles: extract, decide, dispatch, and a
// single atomic state persist at the end of each run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ksuda/pricewatch/internal/extract"
	"github.com/ksuda/pricewatch/internal/metrics"
	"github.com/ksuda/pricewatch/internal/notify"
	"github.com/ksuda/pricewatch/internal/store"
	domain "github.com/ksuda/pricewatch/pkg/types"
)

// Engine runs check cycles over the configured products.
type Engine struct {
	products  []domain.ProductConfig
	extractor extract.Extractor
	store     store.Store
	notifier  notify.Notifier
	log       *slog.Logger
	now       func() time.Time
}

// New creates an Engine with injected dependencies.
func New(
	products []domain.ProductConfig,
	ex extract.Extractor,
	s store.Store,
	n notify.Notifier,
	opts ...Option,
) *Engine {
	eng := &Engine{
		products:  products,
		extractor: ex,
		store:     s,
		notifier:  n,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock sets the time source used for state timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// RunOnce executes one full cycle: load state, process every product in
// configured order, persist the updated document once at the end.
//
// Per-product extraction failures and notification failures are logged and
// skipped; the run continues and still exits cleanly. Only state load/save
// errors are returned, since proceeding without trusted prior state would
// produce duplicate or missed alerts.
func (eng *Engine) RunOnce(ctx context.Context) error {
	start := time.Now()
	metrics.RunsTotal.Inc()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	doc, err := eng.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	for i := range eng.products {
		p := &eng.products[i]
		eng.log.Info("checking product", "name", p.Name, "url", p.URL)
		metrics.ProductsCheckedTotal.Inc()

		reading := eng.extractor.Extract(ctx, *p)
		if !reading.OK() {
			metrics.ExtractionFailuresTotal.WithLabelValues(string(reading.Failure)).Inc()
			eng.log.Warn("extraction failed, product skipped",
				"name", p.Name,
				"reason", reading.Failure,
				"error", reading.Err,
			)
			continue
		}

		var prior *domain.ProductState
		if st, ok := doc[p.Name]; ok {
			prior = &st
		}

		event, next := Decide(*p, reading, prior, eng.now())
		if next != nil {
			doc[p.Name] = *next
		}

		if event == nil {
			eng.log.Info("price recorded", "name", p.Name, "price", reading.Price)
			continue
		}

		metrics.EventsFiredTotal.WithLabelValues(string(event.Kind)).Inc()
		eng.log.Info("event fired",
			"name", p.Name,
			"kind", event.Kind,
			"price", event.NewPrice,
		)

		// Transport failures never roll back the decided state update.
		if err := eng.notifier.Send(ctx, *event); err != nil {
			eng.log.Error("notification failed", "name", p.Name, "error", err)
		}
	}

	if err := eng.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	eng.log.Info("cycle complete",
		"products", len(eng.products),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

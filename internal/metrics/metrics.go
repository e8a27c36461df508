// Package metrics defines Prometheus metrics for pricewatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pricewatch"

// Run metrics.
var (
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of check cycles started.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of check cycles in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	ProductsCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_checked_total",
		Help:      "Total number of per-product extraction attempts.",
	})
)

// Extraction metrics.
var ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "extraction_failures_total",
	Help:      "Total number of extraction failures by reason.",
}, []string{"reason"})

// Event and notification metrics.
var (
	EventsFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_fired_total",
		Help:      "Total number of notification events by kind.",
	}, []string{"kind"})

	NotificationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures by transport.",
	}, []string{"transport"})
)

// Package metrics defines and registers all custom Prometheus metrics for the
// fulfillment decision engine. It is the single source of truth for metric
// names, labels, and help strings; registration happens at import time via
// promauto against the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fulfillment"

// ── Optimizer metrics ─────────────────────────────────────────────────────────

// DecisionsTotal counts completed optimization runs.
// Labels:
//   - strategy: the order's requested objective (e.g. "cheapest")
//   - outcome: "decided", "no_candidates", "no_feasible_candidate",
//     "timed_out", or "providers_unavailable"
var DecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Total number of optimization runs, by strategy and outcome.",
	},
	[]string{"strategy", "outcome"},
)

// OptimizationDuration measures one optimization run end-to-end, from order
// load to decision commit.
var OptimizationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "optimization_duration_seconds",
		Help:      "Duration of optimization runs, by outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// CandidatesEvaluated tracks how many (warehouse, carrier) pairs a successful
// run had to evaluate.
var CandidatesEvaluated = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "candidates_evaluated",
		Help:      "Number of candidate pairs evaluated per decided run.",
		Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
	},
)

// ── Provider gateway metrics ──────────────────────────────────────────────────

// ProviderCallsTotal counts gateway calls by provider and result.
// Labels:
//   - provider: "stock", "quote", or "carbon"
//   - result: "ok" or "error"
var ProviderCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Total number of provider gateway calls, by provider and result.",
	},
	[]string{"provider", "result"},
)

// ProviderCallDuration measures individual gateway call latency, by provider.
var ProviderCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Duration of individual provider gateway calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts orders registered for fulfillment.
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders registered, by strategy.",
	},
	[]string{"strategy"},
)

// ── Outbox metrics ────────────────────────────────────────────────────────────

// OutboxPending tracks the current number of integration events awaiting publication.
var OutboxPending = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "outbox_pending",
		Help:      "Current number of integration events pending in the outbox.",
	},
)

// OutboxPublishedTotal counts integration events successfully published.
var OutboxPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Total number of integration events published to the stream.",
	},
)

// OutboxErrorsTotal counts failed publish attempts.
var OutboxErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_errors_total",
		Help:      "Total number of failed integration event publish attempts.",
	},
)

// Package metrics declares the prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

var (
	// LedgerComputations counts balance computations by view ("aggregate", "pairwise").
	LedgerComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_computations_total",
		Help:      "Balance computations served, by view.",
	}, []string{"view"})

	// LedgerDuration observes how long a computation took, store reads included.
	LedgerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_computation_duration_seconds",
		Help:      "Time spent computing balances, by view.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"view"})

	// LedgerRecords observes how many expenses and settlements fed a computation.
	LedgerRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_records_folded",
		Help:      "Records folded into one balance computation, by record type.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"record"})

	// ValidationViolations counts rejected rules by violation code.
	ValidationViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_violations_total",
		Help:      "Validation violations reported, by code.",
	}, []string{"code"})

	// ActivityEvents counts activity events by kind and outcome
	// ("queued", "dropped", "delivered", "failed").
	ActivityEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Activity notification events, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// ActivityQueueDepth reports events waiting for the delivery worker.
	ActivityQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Activity events waiting for delivery.",
	})
)

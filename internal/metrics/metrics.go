// Package metrics exposes the Prometheus collectors the settlement service
// reports into.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service collectors. Construct with New against the
// registry the /metrics endpoint serves; tests pass their own registry.
type Metrics struct {
	TransactionsRecorded  *prometheus.CounterVec
	DuplicateTransactions prometheus.Counter
	SettlementRuns        prometheus.Counter
	SettlementDuration    prometheus.Histogram
	SettlementPayments    prometheus.Histogram
}

// New registers the service collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TransactionsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "debtsolver",
			Subsystem: "ledger",
			Name:      "transactions_recorded_total",
			Help:      "Transactions accepted into the ledger.",
		}, []string{"currency"}),
		DuplicateTransactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "debtsolver",
			Subsystem: "ledger",
			Name:      "duplicate_transactions_total",
			Help:      "Recording attempts rejected for reusing a client transaction id.",
		}),
		SettlementRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "debtsolver",
			Subsystem: "settle",
			Name:      "runs_total",
			Help:      "Settlement computations served.",
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "debtsolver",
			Subsystem: "settle",
			Name:      "duration_seconds",
			Help:      "Wall time of one settlement computation.",
			Buckets:   prometheus.DefBuckets,
		}),
		SettlementPayments: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "debtsolver",
			Subsystem: "settle",
			Name:      "payments",
			Help:      "Number of payments suggested per settlement run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

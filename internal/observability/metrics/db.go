package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreConnections is labelled by store and by state: in_use, idle,
	// open or max.
	StoreConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "account_store_connections",
			Help: "Account store connections by state",
		},
		[]string{"store", "state"},
	)

	StoreQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_store_query_duration_seconds",
			Help:    "Duration of account store queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"store", "operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_store_query_errors_total",
			Help: "Account store query failures, not counting not-found and duplicate answers",
		},
		[]string{"store", "operation", "error_type"},
	)
)

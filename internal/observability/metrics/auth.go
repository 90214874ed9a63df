package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total number of auth requests",
		},
		[]string{"method", "path"},
	)

	AuthRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_requests_in_flight",
			Help: "Number of auth requests currently being processed",
		},
	)

	AuthRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_request_duration_seconds",
			Help:    "Duration of auth requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	AuthenticationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_authentications_total",
			Help: "Total number of authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	JWTValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jwt_validations_total",
			Help: "Total number of JWT validations by result",
		},
		[]string{"result"},
	)

	PasswordHashDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "password_hash_duration_seconds",
			Help:    "Duration of password hash and compare operations in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	HashPoolWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "password_hash_pool_waiting",
			Help: "Number of callers waiting for a hashing slot",
		},
	)
)

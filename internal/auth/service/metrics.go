package service

import (
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

func recordRegistration(outcome string) {
	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func recordAuthentication(outcome string) {
	metrics.AuthenticationsTotal.WithLabelValues(outcome).Inc()
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

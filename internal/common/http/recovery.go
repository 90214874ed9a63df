package http

import (
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/authd/internal/common/httpmetrics"
	"github.com/AlibekovAA/authd/internal/common/logger"
	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					metrics.PanicsRecovered.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path)).Inc()
					log.WithFields(r.Context(), logger.Fields{"action": "panic"}).
						Criticalf("panic recovered: %v\n%s", err, debug.Stack())
					WriteErrorEnvelope(w, http.StatusInternalServerError, CodeUnknown, "internal server error", nil, TraceIDFromContext(r.Context()))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

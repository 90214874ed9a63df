package httpmetrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AlibekovAA/authd/internal/observability/metrics"
)

type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestsInFlight prometheus.Gauge
	requestDuration  *prometheus.HistogramVec
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}

// New returns a collector for the named service. Unknown names produce a
// pass-through collector.
func New(prefix string) *Collector {
	if prefix != "auth" {
		return &Collector{}
	}
	return &Collector{
		requestsTotal:    metrics.AuthRequestsTotal,
		requestsInFlight: metrics.AuthRequestsInFlight,
		requestDuration:  metrics.AuthRequestDurationSeconds,
	}
}

func (c *Collector) Wrap(next http.Handler) http.Handler {
	if c.requestsTotal == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method
		path := NormalizePath(r.URL.Path)

		c.requestsTotal.WithLabelValues(method, path).Inc()
		c.requestsInFlight.Inc()
		defer c.requestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		statusClass := fmt.Sprintf("%dxx", rec.status/100)
		c.requestDuration.WithLabelValues(method, path, statusClass).Observe(time.Since(start).Seconds())
	})
}

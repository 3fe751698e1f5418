package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics counts requests and tracks latency per handler family. The
// series are exposed at GET /metrics in Prometheus text format.
func Metrics(name string, next http.Handler) http.Handler {
	requests := metrics.GetOrCreateCounter(fmt.Sprintf(`http_requests_total{handler=%q}`, name))
	duration := metrics.GetOrCreateSummary(fmt.Sprintf(`http_request_duration_seconds{handler=%q}`, name))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		requests.Inc()
		duration.UpdateDuration(start)
	})
}

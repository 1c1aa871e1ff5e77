// Package metrics provides the Prometheus metrics surface of spotifetch.
// All metrics are defined next to the code they instrument (pkg/spotify)
// via promauto; this package documents them and offers an optional
// listener for scraping during long enrichment runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spotifetch/spotifetch/pkg/logging"
)

// Registry is the default Prometheus registry used by spotifetch.
// Metrics register automatically via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Serve starts a background HTTP listener exposing /metrics on addr.
// It returns immediately; listen errors are logged, not fatal, since
// metrics are auxiliary to the enrichment run.
func Serve(addr string) {
	logger := logging.NewLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics listener failed")
		}
	}()
}

// Metrics Documentation
//
// Request Metrics (pkg/spotify):
//   - spotifetch_requests_total{endpoint, status} (Counter): API requests by endpoint and HTTP status
//   - spotifetch_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - spotifetch_errors_total{status} (Counter): non-2xx responses by status
//
// Retry Metrics (pkg/spotify):
//   - spotifetch_retries_total (Counter): rate limit retry attempts
//   - spotifetch_retry_wait_seconds (Histogram): server-specified Retry-After waits
//   - spotifetch_retry_exhausted_total (Counter): operations that hit the retry ceiling
//
// Example Prometheus Queries:
//
//   # Rate limit pressure
//   rate(spotifetch_retries_total[5m])
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(spotifetch_request_duration_seconds_bucket[5m]))

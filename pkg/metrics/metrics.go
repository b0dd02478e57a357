// Package metrics provides the Prometheus registry and exposition handler for
// bankbridge. Metrics are defined in their respective packages (client,
// fetcher, snapshot, api) to keep them next to the code that records them.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by bankbridge.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

var buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "bankbridge_build_info",
	Help: "Build information of the running bankbridge binary",
}, []string{"version", "go_version"})

// SetBuildInfo publishes the running version.
func SetBuildInfo(version string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Upstream Metrics (pkg/client):
//   - bankbridge_upstream_requests_total{host, status} (Counter): Upstream requests by host and HTTP status
//   - bankbridge_upstream_request_duration_seconds{host} (Histogram): Upstream request duration
//   - bankbridge_upstream_errors_total{class} (Counter): Upstream errors by class (client, server, unexpected_status, network)
//
// Fetch Metrics (pkg/fetcher):
//   - bankbridge_fetch_results_total{outcome} (Counter): Per-source results (success, degraded, failed)
//   - bankbridge_fetch_duration_seconds (Histogram): Wall-clock duration of a full fan-out
//   - bankbridge_fetch_interrupted_total (Counter): Fan-outs interrupted by the caller
//
// Snapshot Metrics (pkg/snapshot):
//   - bankbridge_snapshot_records (Gauge): Records held by the static snapshot
//   - bankbridge_snapshot_load_errors_total (Counter): Failed snapshot loads
//
// HTTP Metrics (pkg/api):
//   - bankbridge_http_requests_total{route, status} (Counter): Requests by route pattern and status
//   - bankbridge_http_request_duration_seconds{route} (Histogram): Request duration by route pattern
//
// Build Metrics (pkg/metrics):
//   - bankbridge_build_info{version, go_version} (Gauge): Always 1
//
// Example Prometheus Queries:
//
//   # Share of remote sources dropped
//   sum(rate(bankbridge_fetch_results_total{outcome!="success"}[5m])) /
//   sum(rate(bankbridge_fetch_results_total[5m]))
//
//   # Upstream error rate by class
//   sum by (class) (rate(bankbridge_upstream_errors_total[5m]))
//
//   # P95 remote route latency
//   histogram_quantile(0.95, rate(bankbridge_http_request_duration_seconds_bucket{route="/v2/banks/all"}[5m]))

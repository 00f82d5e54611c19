package observability

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ManifestOperationsTotal counts manifest reads and mutations by outcome.
	ManifestOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_manifest_operations_total",
			Help: "Total number of project manifest operations by operation and status",
		},
		[]string{"operation", "status"}, // status: success, failure
	)

	// ManifestOperationDuration tracks read-modify-write duration in seconds.
	ManifestOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gocsx_manifest_operation_duration_seconds",
			Help:    "Project manifest operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to 1s
		},
		[]string{"operation"},
	)

	// ManifestItemsChanged counts build-action items touched by mutations.
	ManifestItemsChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_manifest_items_changed_total",
			Help: "Total number of build-action items added, removed or renamed",
		},
		[]string{"operation"},
	)

	// ManifestParseFailures counts manifests that could not be parsed.
	ManifestParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_manifest_parse_failures_total",
			Help: "Total number of malformed manifests encountered by kind",
		},
		[]string{"kind"}, // csproj, project.json
	)

	// NamespaceResolutionsTotal counts resolved namespaces by the tier that produced them.
	NamespaceResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_namespace_resolutions_total",
			Help: "Total number of namespace resolutions by source",
		},
		[]string{"source"}, // csproj, project.json, directory
	)

	// ScaffoldedFilesTotal counts files written from templates.
	ScaffoldedFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_scaffolded_files_total",
			Help: "Total number of files created from templates",
		},
		[]string{"template"},
	)

	// WatchEventsTotal counts filesystem events seen by the watcher.
	WatchEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocsx_watch_events_total",
			Help: "Total number of filesystem events by kind",
		},
		[]string{"kind"}, // create, delete, rename
	)

	// WatchBatchSize tracks how many created paths each debounced flush carries.
	WatchBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gocsx_watch_batch_size",
			Help:    "Number of created paths per debounced batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		},
	)
)

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer returns a server exposing /metrics on addr. The caller owns its lifecycle.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler())
	return &http.Server{Addr: addr, Handler: mux}
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}

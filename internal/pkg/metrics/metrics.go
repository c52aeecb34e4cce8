package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linuxfest"

// Registry is the Prometheus registry all application metrics are registered on
var Registry = prometheus.NewRegistry()

// AppInfo exposes the running version as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit"},
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Asset pipeline metrics
var (
	// PicturesProcessed counts stored pictures by kind (workshop_main, workshop_album, teacher)
	PicturesProcessed = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pictures_processed_total",
			Help:      "Total number of uploaded pictures resized and stored",
		},
		[]string{"kind"},
	)

	// PicturesRejected counts uploads refused before storage, by reason
	PicturesRejected = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pictures_rejected_total",
			Help:      "Total number of uploaded pictures rejected",
		},
		[]string{"reason"}, // reason: extension|size|content|decode
	)

	// PictureCleanupFailures counts best-effort file removals that failed
	PictureCleanupFailures = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picture_cleanup_failures_total",
			Help:      "Total number of picture files that could not be removed",
		},
	)
)

// Enrollment metrics
var EnrollmentsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollment_operations_total",
		Help:      "Total number of enrollment operations by result",
	},
	[]string{"operation", "result"}, // operation: enroll|unenroll
)

// Init registers runtime collectors and records version information
func Init(version, commit string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit).Set(1)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webvideoa_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webvideoa_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webvideoa_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webvideoa_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Scheduler metrics
var (
	SchedulerItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_scheduler_items_processed_total",
			Help: "Total number of media items processed, by final status",
		},
		[]string{"status"},
	)

	SchedulerProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webvideoa_scheduler_processing_duration_seconds",
			Help:    "End-to-end processing duration per media item in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 2700},
		},
	)

	SchedulerPendingItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webvideoa_scheduler_pending_items",
			Help: "Number of media items waiting to be processed",
		},
	)

	SchedulerActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webvideoa_scheduler_active_workers",
			Help: "Number of workers currently processing an item",
		},
	)
)

// Transcoder metrics
var (
	TranscodeVariantsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_transcode_variants_total",
			Help: "Total number of per-quality encode attempts",
		},
		[]string{"quality", "status"},
	)

	TranscodeVariantDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webvideoa_transcode_variant_duration_seconds",
			Help:    "Per-quality encode duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"quality"},
	)
)

// Delivery metrics
var (
	RangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_range_requests_total",
			Help: "Total number of range requests, by device class and status",
		},
		[]string{"class", "status"},
	)

	DeliveryBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webvideoa_delivery_bytes_total",
			Help: "Total bytes served by the delivery layer",
		},
		[]string{"kind"}, // "stream" (manifests/segments) or "original"
	)
)

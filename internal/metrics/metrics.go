package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Catalog store metrics
var (
	CatalogQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_catalog_queries_total",
			Help: "Total number of catalog store queries",
		},
		[]string{"operation", "status"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_library_catalog_query_duration_seconds",
			Help:    "Catalog store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	CatalogRecordsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "photo_library_catalog_records_total",
			Help: "Number of records in the catalog by kind",
		},
		[]string{"kind"},
	)

	CatalogAlbumsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_catalog_albums_total",
			Help: "Number of distinct album buckets in the catalog",
		},
	)
)

// Library service metrics
var (
	LibraryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_requests_total",
			Help: "Total number of library operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	LibraryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_library_request_duration_seconds",
			Help:    "Duration of library operations measured on the worker",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	LibraryPageAssets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photo_library_page_assets",
			Help:    "Number of assets returned per listing page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	WorkerQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_worker_queue_depth",
			Help: "Number of requests waiting for a worker",
		},
	)

	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_workers_busy",
			Help: "Number of workers currently executing a request",
		},
	)
)

// Derived asset cache metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_cache_lookups_total",
			Help: "Derived asset cache lookups by variant and result (hit, miss)",
		},
		[]string{"variant", "result"},
	)

	CacheGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_cache_generations_total",
			Help: "Derived asset generations by variant and status",
		},
		[]string{"variant", "status"},
	)

	CacheGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photo_library_cache_generation_duration_seconds",
			Help:    "Derived asset generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"variant"},
	)

	CacheBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_cache_bytes_written_total",
			Help: "Bytes written into the derived asset cache",
		},
		[]string{"variant"},
	)

	DecoderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_decoder_attempts_total",
			Help: "Thumbnail decoder strategy attempts by decoder and status",
		},
		[]string{"decoder", "status"},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_library_indexer_runs_total",
			Help: "Total number of indexer runs",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_indexer_last_run_duration_seconds",
			Help: "Duration of the last indexer run in seconds",
		},
	)

	IndexerFilesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_library_indexer_files_processed_total",
			Help: "Total number of media files processed by the indexer",
		},
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_library_indexer_errors_total",
			Help: "Total number of indexer errors",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_indexer_running",
			Help: "Whether the indexer is currently running (1 = running, 0 = idle)",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_filesystem_retry_attempts_total",
			Help: "Retries performed after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_filesystem_retry_failures_total",
			Help: "Operations that still failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_library_filesystem_stale_errors_total",
			Help: "Stale file handle errors observed",
		},
		[]string{"operation", "volume"},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photo_library_memory_paused",
			Help: "Whether thumbnail generation is held back by memory pressure (1 = paused)",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photo_library_memory_pauses_total",
			Help: "Times thumbnail generation was held back by memory pressure",
		},
	)
)

// AppInfo exposes build information as labels on a constant gauge.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "photo_library_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo publishes the build information. Earlier label sets are
// cleared so only the running build is reported.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.Reset()
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

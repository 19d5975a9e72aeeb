// Package metrics provides Prometheus instrumentation for the photo library.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "photo_library_".
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: requests by method, route template and status
//   - HTTPRequestDuration: request duration by method and route template
//   - HTTPRequestsInFlight: requests currently being served
//
// ## Catalog Metrics
//
//   - CatalogQueryTotal / CatalogQueryDuration: store queries by operation
//   - CatalogRecordsTotal: records by kind (image, video)
//   - CatalogAlbumsTotal: distinct album buckets
//
// ## Library Service Metrics
//
//   - LibraryRequestsTotal: operations by outcome
//   - LibraryRequestDuration: time spent on the worker
//   - LibraryPageAssets: assets per listing page
//   - WorkerQueueDepth / WorkersBusy: pool saturation
//
// ## Cache Metrics
//
//   - CacheLookupsTotal: hits and misses by variant
//   - CacheGenerationsTotal / CacheGenerationDuration: derived asset writes
//   - CacheBytesWritten: bytes written by variant
//   - DecoderAttemptsTotal: thumbnail decoder strategy attempts
//
// ## Indexer Metrics
//
//   - IndexerRunsTotal, IndexerLastRunDuration, IndexerFilesProcessed,
//     IndexerErrors, IndexerIsRunning
//
// ## Memory Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryPausesTotal
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver:
//
//   - FilesystemRetryAttempts, FilesystemRetryFailures, FilesystemStaleErrors
//
// # Usage
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape, then start a Collector to refresh the
// catalog gauges:
//
//	metrics.InitializeMetrics()
//	c := metrics.NewCollector(provider, time.Minute)
//	c.Start()
//	defer c.Stop()
package metrics

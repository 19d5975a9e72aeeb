package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video"} {
		CatalogRecordsTotal.WithLabelValues(kind)
	}

	for _, op := range []string{"initialize_schema", "count", "query", "find_by_id", "album_buckets", "upsert", "delete_missing", "stats"} {
		CatalogQueryTotal.WithLabelValues(op, "success")
		CatalogQueryTotal.WithLabelValues(op, "error")
		CatalogQueryDuration.WithLabelValues(op)
	}

	for _, op := range []string{"get_albums", "get_library", "get_full_resolution_file", "get_thumbnail_file"} {
		for _, outcome := range []string{"success", "not_found", "denied", "invalid", "error"} {
			LibraryRequestsTotal.WithLabelValues(op, outcome)
		}
		LibraryRequestDuration.WithLabelValues(op)
	}

	for _, variant := range []string{"thumbnail", "full"} {
		CacheLookupsTotal.WithLabelValues(variant, "hit")
		CacheLookupsTotal.WithLabelValues(variant, "miss")
		for _, status := range []string{"success", "not_found", "error"} {
			CacheGenerationsTotal.WithLabelValues(variant, status)
		}
		CacheGenerationDuration.WithLabelValues(variant)
		CacheBytesWritten.WithLabelValues(variant)
	}

	for _, decoder := range []string{"vips", "imaging", "ffmpeg"} {
		for _, status := range []string{"success", "error", "skipped"} {
			DecoderAttemptsTotal.WithLabelValues(decoder, status)
		}
	}

	for _, op := range []string{"stat", "open"} {
		for _, vol := range []string{"media", "cache", "database", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}

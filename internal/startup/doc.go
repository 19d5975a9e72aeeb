// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] first loads a dotenv file with godotenv: the file named by
// ENV_FILE, or .env in the working directory when it exists. Variables already
// present in the environment are never overridden. It then reads:
//
//   - MEDIA_DIR: Photo and video root, indexed but never written (default: /media)
//   - CACHE_DIR: Root of the thumbnail and full-file caches (default: /cache)
//   - DATABASE_DIR: Directory holding catalog.db (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable the metrics server (default: true)
//   - INDEX_INTERVAL: Re-index interval as a Go duration, 0 disables (default: 30m)
//   - LIBRARY_WORKERS: Library service worker count (default: 2)
//   - ACCESS_GRANTED: Whether photo access is authorized (default: true)
//   - PUBLIC_CACHE_PREFIX: URL prefix cache files are served under (default: /cache)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log cache file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The cache and database directories are created when missing and must be
// writable. The media directory is only checked.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
//
// # Lifecycle Logging
//
// The Log* functions print the sectioned startup and shutdown report:
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//	startup.LogDatabaseInit(time.Since(dbStart))
//	startup.LogIndexerInit(config.IndexInterval)
//	startup.LogServerStarted(startup.ServerConfig{Port: config.Port})
package startup

// Photo Library serves a directory of photos and videos as a paginated,
// newest-first library with cached thumbnails and full-resolution copies.
//
// # Application Lifecycle
//
//  1. Configuration: environment variables, optionally from a .env file
//  2. Catalog: opens the SQLite catalog under DATABASE_DIR
//  3. Decoders: initializes libvips and checks for ffmpeg and ffprobe
//  4. Components:
//     - Derived-asset cache under CACHE_DIR
//     - Library service and its worker pool
//     - Indexer, which walks MEDIA_DIR at startup and every INDEX_INTERVAL
//     - Metrics collector publishing catalog counts
//  5. HTTP: the API on PORT and Prometheus metrics on METRICS_PORT
//  6. Shutdown: SIGINT or SIGTERM drains both servers, then stops the
//     indexer, the collector and the workers before closing the catalog
//
// # API
//
//	GET  /api/authorization          current access state
//	POST /api/authorization          request access
//	GET  /api/albums                 albums with asset counts
//	GET  /api/library                one page of assets (also POST with a JSON body)
//	GET  /api/assets/{id}/file       full-resolution copy
//	GET  /api/assets/{id}/thumbnail  thumbnail, ?width=&height=&quality=
//	POST /api/reindex                start a re-index
//	GET  /cache/{dir}/{name}         derived files named in webPath
//	GET  /healthz, /livez, /readyz   health probes
package main

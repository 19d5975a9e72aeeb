package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/filesystem"
	"photo-library/internal/handlers"
	"photo-library/internal/indexer"
	"photo-library/internal/library"
	"photo-library/internal/logging"
	"photo-library/internal/media"
	"photo-library/internal/memory"
	"photo-library/internal/metrics"
	"photo-library/internal/middleware"
	"photo-library/internal/startup"

	"github.com/gorilla/mux"
)

const (
	metricsInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

// catalogStats adapts the catalog's counts to the metrics collector.
type catalogStats struct {
	store interface {
		Stats(ctx context.Context) (catalog.Stats, error)
	}
}

func (a catalogStats) Stats(ctx context.Context) (metrics.Stats, error) {
	s, err := a.store.Stats(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{
		TotalImages: s.Images,
		TotalVideos: s.Videos,
		TotalAlbums: s.Albums,
	}, nil
}

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"media":    config.MediaDir,
		"cache":    config.CacheDir,
		"database": config.DatabaseDir,
	}))

	dbStart := time.Now()
	store, err := catalog.Open(context.Background(), config.DatabasePath, config.MediaDir)
	if err != nil {
		startup.LogFatal("Failed to open catalog: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, falling back to pure Go decoding: %v", err)
	}
	decoders := media.DefaultDecoders()
	names := make([]string, 0, len(decoders))
	for _, d := range decoders {
		names = append(names, d.Name())
	}
	startup.LogDecoderInit(names)

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	cache, err := media.New(media.Config{
		Dir:          config.CacheDir,
		PublicPrefix: config.PublicCachePrefix,
		Decoders:     decoders,
		Gate:         monitor,
	}, store)
	if err != nil {
		startup.LogFatal("Failed to prepare cache directories: %v", err)
	}

	service := library.NewService(store, cache,
		library.StaticAuthorizer{Granted: config.AccessGranted},
		library.Config{Workers: config.LibraryWorkers})
	service.Start()

	startup.LogIndexerInit(config.IndexInterval)
	idx := indexer.New(store, config.MediaDir, config.IndexInterval)
	collector := metrics.NewCollector(catalogStats{store: store}, metricsInterval)
	idx.SetOnIndexComplete(collector.Refresh)
	idx.Start()
	startup.LogIndexerStarted()
	collector.Start()

	h := handlers.New(service, idx, config.CacheDir)
	router := setupRouter(h, config)
	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           wrapHandler(router, config),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // full-file copies of large videos can take a while
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go handleShutdown(srv, metricsSrv, shutdownDone, func() {
		startup.LogShutdownStep("Stopping indexer")
		idx.Stop()
		startup.LogShutdownStepComplete("Indexer stopped")

		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")

		monitor.Stop()

		startup.LogShutdownStep("Stopping library workers")
		service.Stop()
		startup.LogShutdownStepComplete("Library workers stopped")

		startup.LogShutdownStep("Closing catalog")
		if err := store.Close(); err != nil {
			logging.Warn("Catalog close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Catalog closed")
		}

		media.ShutdownVips()
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.RegisterRoutes(r, config.PublicCachePrefix)
	return r
}

// wrapHandler applies the middleware that must see every request, matched
// or not.
func wrapHandler(router http.Handler, config *startup.Config) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.CachePrefix = config.PublicCachePrefix
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	logged := middleware.Logger(loggingConfig)(router)
	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

func newMetricsServer(port string) *http.Server {
	m := http.NewServeMux()
	m.Handle("/metrics", handlers.MetricsHandler())
	return &http.Server{
		Addr:              ":" + port,
		Handler:           m,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// handleShutdown waits for SIGINT or SIGTERM, drains the servers, stops the
// background components and closes done.
func handleShutdown(srv, metricsSrv *http.Server, done chan<- struct{}, stopComponents func()) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	stopComponents()
	startup.LogShutdownComplete()
}

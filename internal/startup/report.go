package startup

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"photo-library/internal/logging"
)

const rule = "------------------------------------------------------------"

func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

// LogDatabaseInit reports how long opening the catalog took.
func LogDatabaseInit(duration time.Duration) {
	section("CATALOG INITIALIZATION")
	logging.Info("  [OK] Catalog opened in %v", duration)
}

// LogDecoderInit lists the thumbnail decoders in the order they are tried
// and checks for the ffmpeg tools video support needs.
func LogDecoderInit(names []string) {
	section("THUMBNAIL DECODERS")
	logging.Info("  Decoder order: %s", strings.Join(names, ", "))
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if err := checkTool(tool); err != nil {
			logging.Warn("  %v; video thumbnails and metadata may be unavailable", err)
			continue
		}
		logging.Info("  [OK] %s is available", tool)
	}
}

// LogIndexerInit reports the indexing schedule.
func LogIndexerInit(interval time.Duration) {
	section("INDEXER INITIALIZATION")
	if interval > 0 {
		logging.Info("  Index interval: %v", interval)
	} else {
		logging.Info("  Periodic indexing disabled")
	}
}

// LogIndexerStarted confirms the initial index was scheduled.
func LogIndexerStarted() {
	logging.Info("  [OK] Indexer started")
}

// ServerConfig is what LogServerStarted reports.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted prints the listening endpoints.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time: %v", config.StartupDuration)
	logging.Info("  API:          http://0.0.0.0:%s/api", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:      http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:      DISABLED")
	}
	logging.Info(rule)
}

// LogShutdownInitiated opens the shutdown report.
func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received " + signal + ")")
}

// LogShutdownStep logs a step about to run.
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a finished step.
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete closes the shutdown report.
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	fmt.Println(`
` + rule + `
    ____  __          __           __    _ __
   / __ \/ /_  ____  / /_____     / /   (_) /_  _________ ________  __
  / /_/ / __ \/ __ \/ __/ __ \   / /   / / __ \/ ___/ __ '/ ___/ / / /
 / ____/ / / / /_/ / /_/ /_/ /  / /___/ / /_/ / /  / /_/ / /  / /_/ /
/_/   /_/ /_/\____/\__/\____/  /_____/_/_.___/_/   \__,_/_/   \__, /
                                                             /____/
` + rule)
	logging.Info("  Version: %s (%s), built %s", Version, Commit, BuildTime)
	logging.Info("  Started: %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go:         %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	procs, cpus := runtime.GOMAXPROCS(0), runtime.NumCPU()
	if procs < cpus {
		logging.Info("  GOMAXPROCS: %d of %d CPUs (container limit)", procs, cpus)
	} else {
		logging.Info("  GOMAXPROCS: %d", procs)
	}
	if host, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:   %s", host)
	}
}

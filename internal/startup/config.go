package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"photo-library/internal/logging"

	"github.com/joho/godotenv"
)

const (
	// EnvFileVar names the variable that points LoadConfig at a dotenv file.
	EnvFileVar = "ENV_FILE"

	defaultIndexInterval  = 30 * time.Minute
	defaultLibraryWorkers = 2
	databaseFile          = "catalog.db"
)

// Config is the resolved server configuration. Directory fields are
// absolute.
type Config struct {
	MediaDir          string
	CacheDir          string
	DatabaseDir       string
	DatabasePath      string
	Port              string
	MetricsPort       string
	MetricsEnabled    bool
	IndexInterval     time.Duration
	LibraryWorkers    int
	AccessGranted     bool
	PublicCachePrefix string
	LogStaticFiles    bool
	LogHealthChecks   bool
}

// LoadConfig reads the configuration from the environment, after filling
// unset variables from a dotenv file, and prepares the cache and database
// directories.
func LoadConfig() (*Config, error) {
	envFile, err := loadEnvFile()
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		// LOG_LEVEL may have come from the file.
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			logging.SetLevel(logging.ParseLevel(level))
		}
	}

	printBanner()
	logSystemInfo()

	section("CONFIGURATION")
	if envFile != "" {
		logging.Info("  Loaded environment from %s", envFile)
	}

	e := env{lookup: os.Getenv}
	cfg := &Config{
		MediaDir:          e.str("MEDIA_DIR", "/media"),
		CacheDir:          e.str("CACHE_DIR", "/cache"),
		DatabaseDir:       e.str("DATABASE_DIR", "/database"),
		Port:              e.str("PORT", "8080"),
		MetricsPort:       e.str("METRICS_PORT", "9090"),
		MetricsEnabled:    e.flag("METRICS_ENABLED", true),
		IndexInterval:     e.duration("INDEX_INTERVAL", defaultIndexInterval),
		LibraryWorkers:    e.number("LIBRARY_WORKERS", defaultLibraryWorkers),
		AccessGranted:     e.flag("ACCESS_GRANTED", true),
		PublicCachePrefix: e.str("PUBLIC_CACHE_PREFIX", "/cache"),
		LogStaticFiles:    e.flag("LOG_STATIC_FILES", false),
		LogHealthChecks:   e.flag("LOG_HEALTH_CHECKS", true),
	}
	if cfg.LibraryWorkers < 1 {
		logging.Warn("  LIBRARY_WORKERS must be at least 1, using %d", defaultLibraryWorkers)
		cfg.LibraryWorkers = defaultLibraryWorkers
	}
	cfg.log()

	if err := cfg.prepareDirectories(); err != nil {
		return nil, err
	}
	cfg.DatabasePath = filepath.Join(cfg.DatabaseDir, databaseFile)
	return cfg, nil
}

func (c *Config) log() {
	for _, s := range []struct {
		key   string
		value any
	}{
		{"MEDIA_DIR", c.MediaDir},
		{"CACHE_DIR", c.CacheDir},
		{"DATABASE_DIR", c.DatabaseDir},
		{"PORT", c.Port},
		{"METRICS_PORT", c.MetricsPort},
		{"METRICS_ENABLED", c.MetricsEnabled},
		{"INDEX_INTERVAL", c.IndexInterval},
		{"LIBRARY_WORKERS", c.LibraryWorkers},
		{"ACCESS_GRANTED", c.AccessGranted},
		{"PUBLIC_CACHE_PREFIX", c.PublicCachePrefix},
		{"LOG_STATIC_FILES", c.LogStaticFiles},
		{"LOG_HEALTH_CHECKS", c.LogHealthChecks},
		{"LOG_LEVEL", logging.GetLevel()},
	} {
		logging.Info("  %-21s %v", s.key+":", s.value)
	}
}

// loadEnvFile loads ENV_FILE, or ./.env when it exists, and returns the
// name of the file it loaded. Variables already set are left alone.
func loadEnvFile() (string, error) {
	name, explicit := os.Getenv(EnvFileVar), true
	if name == "" {
		name, explicit = ".env", false
	}

	err := godotenv.Load(name)
	switch {
	case err == nil:
		return name, nil
	case !explicit && errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("failed to load %s: %w", name, err)
	}
}

// env reads typed settings. Malformed values are logged and replaced by
// the default.
type env struct {
	lookup func(string) string
}

func (e env) str(key, def string) string {
	if v := e.lookup(key); v != "" {
		return v
	}
	return def
}

func (e env) flag(key string, def bool) bool {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logging.Warn("  Invalid boolean for %s: %q, using %v", key, v, def)
		return def
	}
	return b
}

func (e env) number(key string, def int) int {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Warn("  Invalid integer for %s: %q, using %d", key, v, def)
		return def
	}
	return n
}

// duration accepts Go duration syntax. Negative values are invalid; 0 is
// kept and disables whatever the setting schedules.
func (e env) duration(key string, def time.Duration) time.Duration {
	v := e.lookup(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logging.Warn("  Invalid duration for %s: %q, using %v", key, v, def)
		return def
	}
	return d
}

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"photo-library/internal/logging"
	"photo-library/internal/metrics"
)

// Default timeout for single-row catalog operations
const defaultTimeout = 5 * time.Second

// Store is the SQLite-backed catalog of media records.
type Store struct {
	db       *sql.DB
	dbPath   string
	mediaDir string
	mu       sync.Mutex // serializes write batches
}

// Open opens (and if needed creates) the catalog database at dbPath. Record
// paths are resolved against mediaDir.
func Open(ctx context.Context, dbPath, mediaDir string) (*Store, error) {
	logging.Info("Catalog database path: %s", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout helps prevent "database is locked" errors while the
	// indexer writes and the service reads
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:       db,
		dbPath:   dbPath,
		mediaDir: mediaDir,
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	logging.Info("Catalog initialized successfully at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS media (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		mime_type TEXT,
		display_name TEXT,
		size INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		date_taken_ms INTEGER NOT NULL DEFAULT 0,
		date_added INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		date_modified INTEGER NOT NULL DEFAULT 0,
		album_id TEXT,
		album_title TEXT,
		seen_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_media_kind_added ON media(kind, date_added DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_media_added ON media(date_added DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_media_album ON media(album_id);
	`

	start := time.Now()
	_, err := s.db.ExecContext(ctx, schema)
	recordQuery("initialize_schema", start, err)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// recordQuery records catalog query metrics
func recordQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.CatalogQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.CatalogQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

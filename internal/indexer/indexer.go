package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/logging"
	"photo-library/internal/metrics"
)

var log = logging.For("indexer")

// batchDelay yields to readers between write transactions.
const batchDelay = 10 * time.Millisecond

// Indexer keeps the catalog in step with the media directory.
type Indexer struct {
	store         *catalog.Store
	mediaDir      string
	indexInterval time.Duration
	config        ParallelWalkerConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	lastIndexDuration    time.Duration
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	filesIndexed  atomic.Int64
	indexProgress atomic.Value

	onIndexComplete func()
}

// IndexProgress tracks the current indexing progress.
type IndexProgress struct {
	FilesIndexed int64     `json:"filesIndexed"`
	IsIndexing   bool      `json:"isIndexing"`
	StartedAt    time.Time `json:"startedAt,omitempty"`
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool           `json:"ready"`
	Indexing          bool           `json:"indexing"`
	StartTime         time.Time      `json:"startTime"`
	Uptime            string         `json:"uptime"`
	LastIndexed       time.Time      `json:"lastIndexed,omitempty"`
	LastIndexDuration string         `json:"lastIndexDuration,omitempty"`
	InitialIndexError string         `json:"initialIndexError,omitempty"`
	FilesIndexed      int64          `json:"filesIndexed"`
	IndexProgress     *IndexProgress `json:"indexProgress,omitempty"`
}

// New creates an Indexer that writes into store. An indexInterval of zero
// disables periodic re-indexing.
func New(store *catalog.Store, mediaDir string, indexInterval time.Duration) *Indexer {
	ctx, cancel := context.WithCancel(context.Background())
	idx := &Indexer{
		store:         store,
		mediaDir:      mediaDir,
		indexInterval: indexInterval,
		config:        DefaultParallelWalkerConfig(),
		ctx:           ctx,
		cancel:        cancel,
		startTime:     time.Now(),
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// SetParallelConfig sets the walker configuration.
func (idx *Indexer) SetParallelConfig(config ParallelWalkerConfig) {
	idx.config = config
}

// SetOnIndexComplete sets a callback invoked after every successful index.
func (idx *Indexer) SetOnIndexComplete(callback func()) {
	idx.onIndexComplete = callback
}

// Start runs the initial index in the background and schedules re-indexing.
func (idx *Indexer) Start() {
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		log.Info("Starting initial index in background...")
		if err := idx.Index(idx.ctx); err != nil {
			log.Error("Initial index error: %v", err)
			idx.indexMu.Lock()
			idx.initialIndexError = err
			idx.indexMu.Unlock()
		}
	}()

	if idx.indexInterval > 0 {
		idx.wg.Add(1)
		go idx.periodicIndex()
	}
}

// Stop cancels any running index and waits for background work to exit.
func (idx *Indexer) Stop() {
	idx.cancel()
	idx.wg.Wait()
}

// IsReady reports whether the initial index has finished.
func (idx *Indexer) IsReady() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.initialIndexComplete
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	status := HealthStatus{
		Ready:        idx.initialIndexComplete,
		Indexing:     idx.isIndexing,
		StartTime:    idx.startTime,
		Uptime:       time.Since(idx.startTime).Round(time.Second).String(),
		LastIndexed:  idx.lastIndexTime,
		FilesIndexed: idx.filesIndexed.Load(),
	}
	if idx.lastIndexDuration > 0 {
		status.LastIndexDuration = idx.lastIndexDuration.String()
	}
	if idx.isIndexing {
		progress := idx.GetProgress()
		status.IndexProgress = &progress
	}
	if idx.initialIndexError != nil {
		status.InitialIndexError = idx.initialIndexError.Error()
	}
	return status
}

// Index walks the media directory, upserts every media file and removes
// records whose files are gone. Concurrent calls return immediately.
func (idx *Indexer) Index(ctx context.Context) error {
	if !idx.tryStartIndexing() {
		log.Info("Index already in progress, skipping...")
		return nil
	}
	defer idx.finishIndexing()

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)
	metrics.IndexerRunsTotal.Inc()

	startTime := time.Now()
	log.Info("Starting media indexing of %s...", idx.mediaDir)
	idx.filesIndexed.Store(0)
	idx.indexProgress.Store(IndexProgress{IsIndexing: true, StartedAt: startTime})

	walker := NewParallelWalker(idx.mediaDir, idx.config)
	records, err := walker.Walk(ctx)
	if err != nil && !errors.Is(err, fs.SkipAll) {
		metrics.IndexerErrors.Inc()
		return fmt.Errorf("walk error: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_, walkErrors := walker.Stats()
	metrics.IndexerErrors.Add(float64(walkErrors))

	failed, err := idx.processBatches(ctx, records, startTime)
	if err != nil {
		metrics.IndexerErrors.Inc()
		return err
	}

	// Rows are only pruned after a clean pass, otherwise records from a
	// failed batch would look missing.
	if failed == 0 {
		if err := idx.cleanupMissing(ctx, startTime); err != nil {
			log.Error("Error cleaning up missing files: %v", err)
			metrics.IndexerErrors.Inc()
		}
	} else {
		log.Warn("Skipping cleanup after %d failed batches", failed)
	}

	idx.finalizeIndex(startTime, int64(len(records)))
	return nil
}

// processBatches upserts records in batches and returns how many batches
// failed.
func (idx *Indexer) processBatches(ctx context.Context, records []catalog.Record, seenAt time.Time) (int, error) {
	size := max(idx.config.BatchSize, 1)
	failed := 0

	for i := 0; i < len(records); i += size {
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}

		end := min(i+size, len(records))
		if err := idx.processBatch(ctx, records[i:end], seenAt); err != nil {
			log.Error("Error processing batch: %v", err)
			failed++
		}
		idx.filesIndexed.Store(int64(end))
		idx.updateProgress(seenAt)

		if end < len(records) {
			time.Sleep(batchDelay)
		}
	}
	return failed, nil
}

func (idx *Indexer) processBatch(ctx context.Context, records []catalog.Record, seenAt time.Time) (err error) {
	batch, err := idx.store.BeginBatch(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer func() { err = batch.End(err) }()

	for i := range records {
		if _, err = batch.Upsert(ctx, records[i], seenAt); err != nil {
			return err
		}
	}
	return nil
}

func (idx *Indexer) cleanupMissing(ctx context.Context, cutoff time.Time) (err error) {
	batch, err := idx.store.BeginBatch(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer func() { err = batch.End(err) }()

	deleted, err := batch.DeleteMissing(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Info("Removed %d missing files from the catalog", deleted)
	}
	return nil
}

func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

func (idx *Indexer) finishIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	idx.isIndexing = false
	idx.initialIndexComplete = true
}

func (idx *Indexer) updateProgress(startTime time.Time) {
	idx.indexProgress.Store(IndexProgress{
		FilesIndexed: idx.filesIndexed.Load(),
		IsIndexing:   true,
		StartedAt:    startTime,
	})
}

func (idx *Indexer) finalizeIndex(startTime time.Time, totalFiles int64) {
	duration := time.Since(startTime)

	idx.indexMu.Lock()
	idx.lastIndexTime = time.Now()
	idx.lastIndexDuration = duration
	idx.indexMu.Unlock()

	idx.indexProgress.Store(IndexProgress{FilesIndexed: totalFiles})

	metrics.IndexerLastRunDuration.Set(duration.Seconds())
	metrics.IndexerFilesProcessed.Add(float64(totalFiles))
	log.Info("Index complete: %d files in %v", totalFiles, duration)

	if idx.onIndexComplete != nil {
		idx.onIndexComplete()
	}
}

func (idx *Indexer) periodicIndex() {
	defer idx.wg.Done()

	ticker := time.NewTicker(idx.indexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Debug("Periodic re-index triggered")
			if err := idx.Index(idx.ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("periodic re-index failed: %v", err)
			}
		case <-idx.ctx.Done():
			return
		}
	}
}

// IsIndexing reports whether an index is in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// TriggerIndex starts a re-index in the background.
func (idx *Indexer) TriggerIndex() {
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		if err := idx.Index(idx.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("manually triggered re-index failed: %v", err)
		}
	}()
}

// GetProgress returns the current indexing progress.
func (idx *Indexer) GetProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

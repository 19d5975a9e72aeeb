package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/media"
	"photo-library/internal/mediatypes"
	"photo-library/internal/workers"
)

// ParallelWalkerConfig configures the parallel directory walker.
type ParallelWalkerConfig struct {
	// NumWorkers is the number of files probed at once.
	NumWorkers int
	// BatchSize is the number of records upserted per transaction.
	BatchSize int
	// ChannelBuffer is the size of the job and result buffers.
	ChannelBuffer int
	// SkipHidden skips files and directories starting with ".".
	SkipHidden bool
	// ProbeVideos runs ffprobe for video dimensions and duration.
	ProbeVideos bool
}

// DefaultParallelWalkerConfig keeps probe concurrency low enough for NFS.
// INDEXER_WORKERS overrides the worker count.
func DefaultParallelWalkerConfig() ParallelWalkerConfig {
	return ParallelWalkerConfig{
		NumWorkers:    workers.ForIO(4),
		BatchSize:     500,
		ChannelBuffer: 1000,
		SkipHidden:    true,
		ProbeVideos:   true,
	}
}

type fileJob struct {
	path    string
	relPath string
	info    os.FileInfo
}

type fileResult struct {
	record *catalog.Record
	err    error
}

// ParallelWalker walks the media directory and turns media files into
// catalog records, probing files on a pool of goroutines.
type ParallelWalker struct {
	config   ParallelWalkerConfig
	mediaDir string

	jobs    chan fileJob
	results chan fileResult
	wg      sync.WaitGroup

	filesProcessed atomic.Int64
	errorsCount    atomic.Int64
}

// NewParallelWalker returns a walker over mediaDir.
func NewParallelWalker(mediaDir string, config ParallelWalkerConfig) *ParallelWalker {
	if config.NumWorkers < 1 {
		config.NumWorkers = 1
	}
	return &ParallelWalker{
		config:   config,
		mediaDir: mediaDir,
		jobs:     make(chan fileJob, config.ChannelBuffer),
		results:  make(chan fileResult, config.ChannelBuffer),
	}
}

// Walk returns a record for every media file under the media directory.
// Files that fail to probe are still returned with what could be read.
func (pw *ParallelWalker) Walk(ctx context.Context) ([]catalog.Record, error) {
	log.Info("Starting parallel directory walk with %d workers", pw.config.NumWorkers)
	start := time.Now()

	for i := 0; i < pw.config.NumWorkers; i++ {
		pw.wg.Add(1)
		go pw.worker(ctx)
	}

	var records []catalog.Record
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range pw.results {
			if result.err != nil {
				pw.errorsCount.Add(1)
				log.Debug("Error processing file: %v", result.err)
			}
			if result.record != nil {
				records = append(records, *result.record)
			}
		}
	}()

	err := pw.walkAndEnqueue(ctx)
	close(pw.jobs)
	pw.wg.Wait()
	close(pw.results)
	<-done

	log.Info("Parallel walk complete: %d files in %v (errors: %d)",
		pw.filesProcessed.Load(), time.Since(start), pw.errorsCount.Load())

	return records, err
}

func (pw *ParallelWalker) walkAndEnqueue(ctx context.Context) error {
	return filepath.WalkDir(pw.mediaDir, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			log.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if pw.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != pw.mediaDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !mediatypes.IsMediaFile(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(pw.mediaDir, path)
		if err != nil {
			//nolint:nilerr // skip this file but keep walking
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Warn("Error getting info for %s: %v", path, err)
			return nil
		}

		select {
		case pw.jobs <- fileJob{path: path, relPath: relPath, info: info}:
		case <-ctx.Done():
			return fs.SkipAll
		}
		return nil
	})
}

func (pw *ParallelWalker) worker(ctx context.Context) {
	defer pw.wg.Done()

	for job := range pw.jobs {
		if ctx.Err() != nil {
			continue
		}
		result := pw.processFile(ctx, job)
		if result.record != nil {
			pw.filesProcessed.Add(1)
		}
		pw.results <- result
	}
}

// processFile builds the catalog record for one file.
func (pw *ParallelWalker) processFile(ctx context.Context, job fileJob) fileResult {
	class, mimeType := mediatypes.Detect(job.path)

	rec := &catalog.Record{
		Path:                filepath.ToSlash(job.relPath),
		MimeType:            mimeType,
		DisplayName:         job.info.Name(),
		ByteSize:            job.info.Size(),
		DateAddedSeconds:    job.info.ModTime().Unix(),
		DateModifiedSeconds: job.info.ModTime().Unix(),
	}
	rec.AlbumID, rec.AlbumTitle = albumFor(job.relPath)

	switch class {
	case mediatypes.ClassImage:
		rec.Kind = catalog.KindImage
		dims, err := media.GetImageDimensions(job.path)
		if err != nil {
			return fileResult{record: rec, err: err}
		}
		rec.Width, rec.Height = dims.Width, dims.Height

	case mediatypes.ClassVideo:
		rec.Kind = catalog.KindVideo
		if !pw.config.ProbeVideos {
			break
		}
		info, err := ProbeVideo(ctx, job.path)
		if err != nil {
			return fileResult{record: rec, err: err}
		}
		rec.Width, rec.Height = info.Width, info.Height
		rec.DurationMillis = info.DurationMillis
		rec.DateTakenMillis = info.CreatedMillis

	default:
		return fileResult{}
	}

	return fileResult{record: rec}
}

// albumFor derives the album of a file from its parent directory. Files
// directly under the media root belong to no album.
func albumFor(relPath string) (id, title string) {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return "", ""
	}
	return filepath.ToSlash(dir), filepath.Base(dir)
}

// Stats returns processed and failed file counts.
func (pw *ParallelWalker) Stats() (files, errors int64) {
	return pw.filesProcessed.Load(), pw.errorsCount.Load()
}

package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/filesystem"
	"photo-library/internal/logging"
	"photo-library/internal/metrics"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

var log = logging.For("cache")

const (
	// ThumbnailsDir holds generated JPEG thumbnails under the cache root.
	ThumbnailsDir = "thumbnails"
	// FilesDir holds full-resolution copies under the cache root.
	FilesDir = "files"
)

// Source gives the cache access to the original bytes of a record.
// *catalog.Store implements it.
type Source interface {
	SourcePath(rec catalog.Record) string
	OpenSource(rec catalog.Record) (io.ReadCloser, error)
}

// Entry is a derived asset that exists on disk.
type Entry struct {
	Path     string // absolute path inside the cache
	WebPath  string // URI handed to clients
	MimeType string
	Size     int64
}

// Config configures a Cache.
type Config struct {
	// Dir is the cache root. Subdirectories are created by New.
	Dir string
	// PublicPrefix is the URL path the cache is served under. When empty,
	// entries carry file:// URIs instead.
	PublicPrefix string
	// Decoders are tried in order for thumbnails. Defaults to
	// DefaultDecoders.
	Decoders []Decoder
	// Gate, when set, is waited on before an original is decoded.
	Gate Gate
}

// Gate holds back thumbnail decoding. *memory.Monitor implements it.
type Gate interface {
	Wait(ctx context.Context) error
}

// Cache derives thumbnails and full-resolution copies on demand and keeps
// them forever. A file that exists under its key's name is returned as is;
// nothing is invalidated or evicted here.
type Cache struct {
	source       Source
	thumbDir     string
	fileDir      string
	publicPrefix string
	decoders     []Decoder
	gate         Gate
	group        singleflight.Group
}

// New creates the cache directories and returns a Cache reading originals
// from source.
func New(cfg Config, source Source) (*Cache, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache directory is required")
	}
	decoders := cfg.Decoders
	if len(decoders) == 0 {
		decoders = DefaultDecoders()
	}

	c := &Cache{
		source:       source,
		thumbDir:     filepath.Join(cfg.Dir, ThumbnailsDir),
		fileDir:      filepath.Join(cfg.Dir, FilesDir),
		publicPrefix: cfg.PublicPrefix,
		decoders:     decoders,
		gate:         cfg.Gate,
	}
	for _, dir := range []string{c.thumbDir, c.fileDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	return c, nil
}

// Thumbnail returns the width×height JPEG thumbnail of rec at quality in
// [0,1], generating it on first use. It returns nil, nil when either
// dimension is not positive or the original cannot be decoded.
func (c *Cache) Thumbnail(ctx context.Context, rec catalog.Record, width, height int, quality float64) (*Entry, error) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	key := ThumbnailKey(rec.AssetID(), width, height, quality)
	return c.lookup(key, c.thumbDir, ThumbnailsDir, ThumbnailMimeType, func(name string) (int64, error) {
		if c.gate != nil {
			if err := c.gate.Wait(ctx); err != nil {
				return 0, err
			}
		}
		img, err := decode(ctx, c.decoders, rec.Kind, c.source.SourcePath(rec), width, height)
		if err != nil {
			return 0, err
		}
		return writeFileAtomic(c.thumbDir, name, func(w io.Writer) error {
			return encodeThumbnail(w, img, width, height, key.QualityPercent)
		})
	})
}

// FullFile returns a verbatim copy of rec's original bytes, copying it into
// the cache on first use. It returns nil, nil when the original is gone.
func (c *Cache) FullFile(_ context.Context, rec catalog.Record) (*Entry, error) {
	mimeType := rec.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	key := FullKey(rec.AssetID(), rec.MimeType)
	return c.lookup(key, c.fileDir, FilesDir, mimeType, func(name string) (int64, error) {
		src, err := c.source.OpenSource(rec)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return 0, ErrUndecodable
			}
			return 0, fmt.Errorf("failed to open original: %w", err)
		}
		defer func() {
			if cerr := src.Close(); cerr != nil {
				log.Warn("failed to close original of %s: %v", rec.AssetID(), cerr)
			}
		}()

		return writeFileAtomic(c.fileDir, name, func(w io.Writer) error {
			_, err := io.Copy(w, src)
			return err
		})
	})
}

// lookup returns the entry for key, running generate on a miss. Concurrent
// misses for one key in this process share a single generation.
func (c *Cache) lookup(key Key, dir, webDir, mimeType string, generate func(name string) (int64, error)) (*Entry, error) {
	name := key.FileName()
	full := filepath.Join(dir, name)
	variant := string(key.Variant)

	entry, err := c.existing(full, webDir, name, mimeType)
	if err != nil || entry != nil {
		if entry != nil {
			metrics.CacheLookupsTotal.WithLabelValues(variant, "hit").Inc()
		}
		return entry, err
	}
	metrics.CacheLookupsTotal.WithLabelValues(variant, "miss").Inc()

	v, err, shared := c.group.Do(variant+"/"+name, func() (interface{}, error) {
		// Another caller may have finished between our stat and Do.
		if e, err := c.existing(full, webDir, name, mimeType); err != nil || e != nil {
			return e, err
		}

		start := time.Now()
		size, err := generate(name)
		metrics.CacheGenerationDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())

		switch {
		case errors.Is(err, ErrUndecodable):
			metrics.CacheGenerationsTotal.WithLabelValues(variant, "not_found").Inc()
			log.Debug("no %s for %s: %v", variant, key.AssetID, err)
			return (*Entry)(nil), nil
		case err != nil:
			metrics.CacheGenerationsTotal.WithLabelValues(variant, "error").Inc()
			return nil, fmt.Errorf("failed to generate %s for %s: %w", variant, key.AssetID, err)
		}

		metrics.CacheGenerationsTotal.WithLabelValues(variant, "success").Inc()
		metrics.CacheBytesWritten.WithLabelValues(variant).Add(float64(size))
		log.Debug("generated %s %s (%d bytes) in %v", variant, name, size, time.Since(start))
		return c.entry(full, webDir, name, mimeType, size), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("coalesced %s generation for %s", variant, key.AssetID)
	}
	entry, _ = v.(*Entry)
	return entry, nil
}

func (c *Cache) existing(full, webDir, name, mimeType string) (*Entry, error) {
	info, err := filesystem.Stat(context.Background(), full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat cache file %s: %w", name, err)
	}
	return c.entry(full, webDir, name, mimeType, info.Size()), nil
}

func (c *Cache) entry(full, webDir, name, mimeType string, size int64) *Entry {
	return &Entry{
		Path:     full,
		WebPath:  c.webPath(full, webDir, name),
		MimeType: mimeType,
		Size:     size,
	}
}

func (c *Cache) webPath(full, webDir, name string) string {
	if c.publicPrefix == "" {
		return "file://" + filepath.ToSlash(full)
	}
	return path.Join("/", c.publicPrefix, webDir, name)
}

// encodeThumbnail scales img to exactly width×height, ignoring aspect
// ratio, and writes it as JPEG at the given percentage.
func encodeThumbnail(w io.Writer, img image.Image, width, height, qualityPercent int) error {
	scaled := imaging.Resize(img, width, height, imaging.Lanczos)
	// image/jpeg clamps 0 up to its lowest quality of 1.
	return jpeg.Encode(w, scaled, &jpeg.Options{Quality: qualityPercent})
}

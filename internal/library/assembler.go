package library

import (
	"context"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/logging"
	"photo-library/internal/media"
)

var log = logging.For("library")

// isoFormat renders instants in UTC with millisecond precision.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

// Cache produces derived files for records. *media.Cache implements it.
type Cache interface {
	Thumbnail(ctx context.Context, rec catalog.Record, width, height int, quality float64) (*media.Entry, error)
	FullFile(ctx context.Context, rec catalog.Record) (*media.Entry, error)
}

// File describes a derived file on disk.
type File struct {
	Path     string `json:"path"`
	WebPath  string `json:"webPath"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

func fileFromEntry(e *media.Entry) *File {
	return &File{Path: e.Path, WebPath: e.WebPath, MimeType: e.MimeType, Size: e.Size}
}

// Asset is the client payload for one catalog record.
type Asset struct {
	ID               string   `json:"id"`
	FileName         string   `json:"fileName"`
	Type             string   `json:"type"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Duration         float64  `json:"duration,omitempty"`
	CreationDate     string   `json:"creationDate,omitempty"`
	ModificationDate string   `json:"modificationDate,omitempty"`
	MimeType         string   `json:"mimeType"`
	Size             int64    `json:"size"`
	AlbumIDs         []string `json:"albumIds,omitempty"`
	Thumbnail        *File    `json:"thumbnail,omitempty"`
	File             *File    `json:"file,omitempty"`
}

// Assembler builds Asset payloads, attaching derived files as requested.
type Assembler struct {
	cache Cache
}

// NewAssembler returns an Assembler drawing derived files from cache.
func NewAssembler(cache Cache) *Assembler {
	return &Assembler{cache: cache}
}

// Assemble builds the payload for rec. A derived file that cannot be
// produced is left out of the payload and logged.
func (a *Assembler) Assemble(ctx context.Context, rec catalog.Record, opts ListingOptions) Asset {
	id := rec.AssetID()

	asset := Asset{
		ID:       id.String(),
		FileName: rec.DisplayName,
		Type:     string(rec.Kind),
		Width:    rec.Width,
		Height:   rec.Height,
		MimeType: rec.MimeType,
		Size:     rec.ByteSize,
	}
	if asset.FileName == "" {
		asset.FileName = id.String() + media.GuessExtension(rec.MimeType)
	}
	if asset.MimeType == "" {
		asset.MimeType = media.DefaultMimeType
	}

	if rec.Kind == catalog.KindVideo && rec.DurationMillis > 0 {
		asset.Duration = float64(rec.DurationMillis) / 1000.0
	}
	if ms := creationMillis(rec); ms > 0 {
		asset.CreationDate = formatMillis(ms)
	}
	if rec.DateModifiedSeconds > 0 {
		asset.ModificationDate = formatMillis(rec.DateModifiedSeconds * 1000)
	}
	if opts.IncludeAlbumData && rec.AlbumID != "" {
		asset.AlbumIDs = []string{rec.AlbumID}
	}

	if opts.WantsThumbnail() {
		entry, err := a.cache.Thumbnail(ctx, rec, opts.ThumbnailWidth, opts.ThumbnailHeight, opts.ThumbnailQuality)
		switch {
		case err != nil:
			log.Warn("thumbnail for %s failed: %v", id, err)
		case entry != nil:
			asset.Thumbnail = fileFromEntry(entry)
		}
	}

	if opts.IncludeFullResolutionData {
		entry, err := a.cache.FullFile(ctx, rec)
		switch {
		case err != nil:
			log.Warn("full file for %s failed: %v", id, err)
		case entry != nil:
			asset.File = fileFromEntry(entry)
		}
	}

	return asset
}

// creationMillis prefers the capture time and falls back to the time the
// record was added.
func creationMillis(rec catalog.Record) int64 {
	if rec.DateTakenMillis > 0 {
		return rec.DateTakenMillis
	}
	if rec.DateAddedSeconds > 0 {
		return rec.DateAddedSeconds * 1000
	}
	return 0
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoFormat)
}

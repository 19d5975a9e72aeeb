package handlers

import (
	"context"

	"photo-library/internal/indexer"
	"photo-library/internal/library"
	"photo-library/internal/logging"
)

var log = logging.For("http")

// Library is the part of library.Service the HTTP API serves.
type Library interface {
	CheckAuthorization() library.AuthorizationState
	RequestAuthorization() library.AuthorizationState
	GetAlbums(ctx context.Context) ([]library.Album, error)
	GetLibrary(ctx context.Context, req library.ListingRequest) (*library.Library, error)
	GetFullResolutionFile(ctx context.Context, id string) (*library.File, error)
	GetThumbnailFile(ctx context.Context, id string, width, height int, quality float64) (*library.File, error)
}

// Indexer is the indexer state exposed by the health and reindex endpoints.
type Indexer interface {
	IsReady() bool
	IsIndexing() bool
	GetHealthStatus() indexer.HealthStatus
	TriggerIndex()
}

// Handlers holds the dependencies of every HTTP handler.
type Handlers struct {
	library  Library
	indexer  Indexer
	cacheDir string
}

// New creates the handlers. cacheDir is the root the cache file routes
// serve from.
func New(lib Library, idx Indexer, cacheDir string) *Handlers {
	return &Handlers{
		library:  lib,
		indexer:  idx,
		cacheDir: cacheDir,
	}
}

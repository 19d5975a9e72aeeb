package library

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"photo-library/internal/catalog"
	"photo-library/internal/metrics"
	"photo-library/internal/workers"
)

// DefaultWorkers is the size of the service's worker pool.
const DefaultWorkers = 2

// Config sizes the service's worker pool.
type Config struct {
	Workers   int
	QueueSize int
}

// Album is a bucket of records sharing a parent directory.
type Album struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	AssetCount int    `json:"assetCount"`
}

// Library is one listing page.
type Library struct {
	Assets     []Asset `json:"assets"`
	TotalCount int     `json:"totalCount"`
	HasMore    bool    `json:"hasMore"`
}

// Service is the library's entry point. Every data operation checks access,
// then runs start to finish on one worker of a fixed pool while the caller
// waits.
type Service struct {
	catalog   Catalog
	cache     Cache
	auth      Authorizer
	pool      *workers.Pool
	query     *CatalogQuery
	resolver  *AssetResolver
	assembler *Assembler
}

// NewService wires a Service. Call Start before use and Stop when done.
func NewService(cat Catalog, cache Cache, auth Authorizer, cfg Config) *Service {
	size := cfg.Workers
	if size <= 0 {
		size = DefaultWorkers
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = size * 32
	}

	return &Service{
		catalog:   cat,
		cache:     cache,
		auth:      auth,
		pool:      workers.NewPool(size, queue),
		query:     NewCatalogQuery(cat),
		resolver:  NewAssetResolver(cat),
		assembler: NewAssembler(cache),
	}
}

// Start launches the worker pool.
func (s *Service) Start() {
	s.pool.Start()
	log.Info("library service started with %d workers", s.pool.Size())
}

// Stop finishes queued work and stops the worker pool.
func (s *Service) Stop() {
	s.pool.Stop()
	log.Info("library service stopped")
}

// CheckAuthorization reports the current access state.
func (s *Service) CheckAuthorization() AuthorizationState {
	return s.auth.Check()
}

// RequestAuthorization asks for access and reports the resulting state.
func (s *Service) RequestAuthorization() AuthorizationState {
	return s.auth.Request()
}

func (s *Service) authorize() error {
	if !s.auth.Check().Allowed() {
		return ErrPermissionDenied
	}
	return nil
}

// GetAlbums lists albums across images and videos, merged by album id and
// ordered by title.
func (s *Service) GetAlbums(ctx context.Context) (albums []Album, err error) {
	defer observe("get_albums", time.Now(), &err)

	if err = s.authorize(); err != nil {
		return nil, err
	}
	return workers.Run(ctx, s.pool, func() ([]Album, error) {
		return s.albums(detach(ctx))
	})
}

func (s *Service) albums(ctx context.Context) ([]Album, error) {
	byID := make(map[string]*Album)
	for _, kind := range []catalog.Kind{catalog.KindImage, catalog.KindVideo} {
		buckets, err := s.catalog.AlbumBuckets(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s albums: %w", kind, err)
		}
		for _, b := range buckets {
			if b.ID == "" {
				continue
			}
			album, ok := byID[b.ID]
			if !ok {
				album = &Album{ID: b.ID, Title: b.Title}
				byID[b.ID] = album
			}
			album.AssetCount++
		}
	}

	albums := make([]Album, 0, len(byID))
	for _, a := range byID {
		albums = append(albums, *a)
	}
	slices.SortFunc(albums, func(a, b Album) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return albums, nil
}

// GetLibrary validates req and returns the selected page of assets.
func (s *Service) GetLibrary(ctx context.Context, req ListingRequest) (lib *Library, err error) {
	defer observe("get_library", time.Now(), &err)

	if err = s.authorize(); err != nil {
		return nil, err
	}
	opts, err := NewListingOptions(req)
	if err != nil {
		return nil, err
	}

	return workers.Run(ctx, s.pool, func() (*Library, error) {
		ctx := detach(ctx)
		result, err := s.query.List(ctx, opts)
		if err != nil {
			return nil, err
		}

		assets := make([]Asset, 0, len(result.Records))
		for _, rec := range result.Records {
			assets = append(assets, s.assembler.Assemble(ctx, rec, opts))
		}
		metrics.LibraryPageAssets.Observe(float64(len(assets)))
		log.Debug("listed %d of %d assets (offset %d, limit %d, more %v)",
			len(assets), result.TotalCount, opts.Offset, opts.Limit, result.HasMore)

		return &Library{Assets: assets, TotalCount: result.TotalCount, HasMore: result.HasMore}, nil
	})
}

// GetFullResolutionFile returns the cached full copy of the asset.
func (s *Service) GetFullResolutionFile(ctx context.Context, id string) (file *File, err error) {
	defer observe("get_full_resolution_file", time.Now(), &err)

	if err = s.checkLookup(id); err != nil {
		return nil, err
	}
	return workers.Run(ctx, s.pool, func() (*File, error) {
		ctx := detach(ctx)
		return s.lookup(ctx, id, func(rec catalog.Record) (*File, error) {
			entry, err := s.cache.FullFile(ctx, rec)
			if err != nil || entry == nil {
				return nil, err
			}
			return fileFromEntry(entry), nil
		})
	})
}

// GetThumbnailFile returns the cached width×height thumbnail of the asset.
func (s *Service) GetThumbnailFile(ctx context.Context, id string, width, height int, quality float64) (file *File, err error) {
	defer observe("get_thumbnail_file", time.Now(), &err)

	if err = s.checkLookup(id); err != nil {
		return nil, err
	}
	return workers.Run(ctx, s.pool, func() (*File, error) {
		ctx := detach(ctx)
		return s.lookup(ctx, id, func(rec catalog.Record) (*File, error) {
			entry, err := s.cache.Thumbnail(ctx, rec, width, height, quality)
			if err != nil || entry == nil {
				return nil, err
			}
			return fileFromEntry(entry), nil
		})
	})
}

// detach keeps ctx's values but not its cancellation. The caller's context
// only bounds the wait for a worker; a job that has started runs to the end.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (s *Service) checkLookup(id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if id == "" {
		return invalid("Parameter 'id' is required")
	}
	return nil
}

// lookup resolves id and hands the record to derive. A missing record or a
// nil file from derive is ErrNotFound.
func (s *Service) lookup(ctx context.Context, id string, derive func(catalog.Record) (*File, error)) (*File, error) {
	rec, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	file, err := derive(*rec)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrNotFound
	}
	return file, nil
}

func observe(operation string, start time.Time, errp *error) {
	outcome := "success"
	switch err := *errp; {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrPermissionDenied):
		outcome = "denied"
	case errors.Is(err, ErrValidation):
		outcome = "invalid"
	default:
		outcome = "error"
		log.Error("%s failed: %v", operation, err)
	}
	metrics.LibraryRequestsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.LibraryRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

package library

import (
	"context"
	"fmt"
	"slices"

	"photo-library/internal/catalog"
	"photo-library/internal/media"
)

// Catalog is the read side of the catalog store. *catalog.Store
// implements it.
type Catalog interface {
	media.Source

	Count(ctx context.Context, kinds []catalog.Kind) (int, error)
	Query(ctx context.Context, kinds []catalog.Kind, page *catalog.Page, fn func(catalog.Record) error) error
	FindByID(ctx context.Context, kind catalog.Kind, id int64) (*catalog.Record, error)
	AlbumBuckets(ctx context.Context, kind catalog.Kind) ([]catalog.Bucket, error)
}

// QueryResult is one page of catalog records in listing order.
type QueryResult struct {
	Records    []catalog.Record
	TotalCount int
	HasMore    bool
}

// CatalogQuery turns listing options into a counted, paginated read of the
// catalog, newest first.
type CatalogQuery struct {
	catalog Catalog
}

// NewCatalogQuery returns a CatalogQuery reading from cat.
func NewCatalogQuery(cat Catalog) *CatalogQuery {
	return &CatalogQuery{catalog: cat}
}

// List reads the page selected by opts. Bounded listings push the offset
// and limit down to the store; unbounded listings skip the first Offset rows
// here. The two modes compute HasMore differently.
func (q *CatalogQuery) List(ctx context.Context, opts ListingOptions) (QueryResult, error) {
	kinds := opts.Kinds()

	total, err := q.catalog.Count(ctx, kinds)
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to count catalog: %w", err)
	}

	var (
		records []catalog.Record
		page    *catalog.Page
		skipped int
	)
	if opts.Bounded() {
		page = &catalog.Page{Offset: opts.Offset, Limit: opts.Limit}
		records = make([]catalog.Record, 0, opts.Limit)
	}

	err = q.catalog.Query(ctx, kinds, page, func(rec catalog.Record) error {
		if page == nil && skipped < opts.Offset {
			skipped++
			return nil
		}
		if !slices.Contains(kinds, rec.Kind) {
			return nil
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return QueryResult{}, fmt.Errorf("failed to query catalog: %w", err)
	}

	result := QueryResult{Records: records, TotalCount: total}
	if page != nil {
		result.HasMore = opts.Offset+len(records) < total
	} else {
		result.HasMore = min(total, opts.Offset)+len(records) < total
	}
	return result, nil
}

package library

import (
	"context"
	"fmt"

	"photo-library/internal/catalog"
)

// AssetResolver maps client asset ids to current catalog records.
type AssetResolver struct {
	catalog Catalog
}

// NewAssetResolver returns a resolver reading from cat.
func NewAssetResolver(cat Catalog) *AssetResolver {
	return &AssetResolver{catalog: cat}
}

// Resolve re-reads the record addressed by id. It returns nil, nil when id is
// malformed or the record no longer exists; only store failures are errors.
func (r *AssetResolver) Resolve(ctx context.Context, id string) (*catalog.Record, error) {
	kind, nativeID, ok := catalog.ParseAssetID(id)
	if !ok {
		return nil, nil
	}

	rec, err := r.catalog.FindByID(ctx, kind, nativeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", id, err)
	}
	return rec, nil
}

package library

import (
	"cmp"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"photo-library/internal/catalog"
	"photo-library/internal/media"
)

// memCatalog is an in-memory Catalog that sorts like the SQLite store.
type memCatalog struct {
	mu      sync.Mutex
	records []catalog.Record
	dir     string
	err     error
}

func (m *memCatalog) add(recs ...catalog.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recs...)
	slices.SortFunc(m.records, func(a, b catalog.Record) int {
		return cmp.Or(cmp.Compare(b.DateAddedSeconds, a.DateAddedSeconds), cmp.Compare(b.ID, a.ID))
	})
}

func (m *memCatalog) remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.DeleteFunc(m.records, func(r catalog.Record) bool { return r.ID == id })
}

func (m *memCatalog) matching(kinds []catalog.Kind) []catalog.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []catalog.Record
	for _, r := range m.records {
		if slices.Contains(kinds, r.Kind) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memCatalog) Count(_ context.Context, kinds []catalog.Kind) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.matching(kinds)), nil
}

func (m *memCatalog) Query(_ context.Context, kinds []catalog.Kind, page *catalog.Page, fn func(catalog.Record) error) error {
	if m.err != nil {
		return m.err
	}
	rows := m.matching(kinds)
	if page != nil {
		start := min(page.Offset, len(rows))
		end := min(start+page.Limit, len(rows))
		rows = rows[start:end]
	}
	for _, r := range rows {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (m *memCatalog) FindByID(_ context.Context, kind catalog.Kind, id int64) (*catalog.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.matching([]catalog.Kind{kind}) {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memCatalog) AlbumBuckets(_ context.Context, kind catalog.Kind) ([]catalog.Bucket, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []catalog.Bucket
	for _, r := range m.matching([]catalog.Kind{kind}) {
		if r.AlbumID != "" {
			out = append(out, catalog.Bucket{ID: r.AlbumID, Title: r.AlbumTitle})
		}
	}
	return out, nil
}

func (m *memCatalog) SourcePath(rec catalog.Record) string {
	return filepath.Join(m.dir, rec.Path)
}

func (m *memCatalog) OpenSource(rec catalog.Record) (io.ReadCloser, error) {
	return os.Open(m.SourcePath(rec))
}

// images returns n image records added one second apart, ids 1..n.
func images(n int) []catalog.Record {
	recs := make([]catalog.Record, n)
	for i := range recs {
		id := int64(i + 1)
		recs[i] = catalog.Record{
			ID:               id,
			Kind:             catalog.KindImage,
			Path:             strings.Repeat("x", i+1) + ".jpg",
			MimeType:         "image/jpeg",
			DateAddedSeconds: 1_700_000_000 + id,
		}
	}
	return recs
}

// stubCache records calls and hands back fixed entries.
type stubCache struct {
	mu         sync.Mutex
	thumbCalls int
	fullCalls  int
	thumbErr   error
	fullErr    error
	missing    bool
}

func (c *stubCache) Thumbnail(_ context.Context, rec catalog.Record, width, height int, quality float64) (*media.Entry, error) {
	c.mu.Lock()
	c.thumbCalls++
	c.mu.Unlock()
	if c.thumbErr != nil {
		return nil, c.thumbErr
	}
	if c.missing || width <= 0 || height <= 0 {
		return nil, nil
	}
	name := media.ThumbnailKey(rec.AssetID(), width, height, quality).FileName()
	return &media.Entry{Path: "/cache/thumbnails/" + name, WebPath: "/cache/thumbnails/" + name, MimeType: media.ThumbnailMimeType, Size: 100}, nil
}

func (c *stubCache) FullFile(_ context.Context, rec catalog.Record) (*media.Entry, error) {
	c.mu.Lock()
	c.fullCalls++
	c.mu.Unlock()
	if c.fullErr != nil {
		return nil, c.fullErr
	}
	if c.missing {
		return nil, nil
	}
	name := media.FullKey(rec.AssetID(), rec.MimeType).FileName()
	mime := rec.MimeType
	if mime == "" {
		mime = media.DefaultMimeType
	}
	return &media.Entry{Path: "/cache/files/" + name, WebPath: "/cache/files/" + name, MimeType: mime, Size: rec.ByteSize}, nil
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

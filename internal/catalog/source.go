package catalog

import (
	"context"
	"io"
	"path/filepath"

	"photo-library/internal/filesystem"
)

// SourcePath returns the absolute path of the record's original file.
func (s *Store) SourcePath(rec Record) string {
	return filepath.Join(s.mediaDir, filepath.FromSlash(rec.Path))
}

// OpenSource opens the record's original bytes for reading.
func (s *Store) OpenSource(rec Record) (io.ReadCloser, error) {
	return filesystem.Open(context.Background(), s.SourcePath(rec))
}

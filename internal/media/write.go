package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFileAtomic writes name inside dir through a uniquely named temp file
// and renames it into place, so readers only ever see complete files. When
// two writers race on the same name the last rename wins.
func writeFileAtomic(dir, name string, write func(io.Writer) error) (int64, error) {
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	cw := &countingWriter{w: f}
	werr := write(cw)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmp)
		return 0, errors.Join(werr, cerr)
	}

	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return cw.n, nil
}

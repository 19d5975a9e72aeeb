package streaming

import (
	"errors"
	"net/http"
	"os"
	"time"

	"photo-library/internal/logging"
)

var log = logging.For("streaming")

// ErrWriteTimeout is returned once a client stops reading for longer than
// the write timeout or the transfer runs past its maximum duration.
var ErrWriteTimeout = errors.New("write timeout exceeded")

// Config bounds a single response body transfer.
type Config struct {
	// WriteTimeout is how long one chunk may take to reach the client.
	WriteTimeout time.Duration
	// MaxDuration caps the whole transfer. 0 means unlimited.
	MaxDuration time.Duration
	// ChunkSize splits large writes so each gets a fresh deadline.
	// 0 writes as received.
	ChunkSize int
}

// DefaultConfig suits full-resolution video downloads on slow links.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// Writer moves the connection's write deadline forward before each chunk,
// so a stalled client is dropped while a slow but steady one is not. The
// server itself runs without a WriteTimeout.
type Writer struct {
	http.ResponseWriter
	rc      *http.ResponseController
	config  Config
	start   time.Time
	written int64
	// deadlines is false when the underlying writer cannot set deadlines.
	deadlines bool
}

// NewWriter wraps w. Deadlines are cleared again by Close.
func NewWriter(w http.ResponseWriter, config Config) *Writer {
	return &Writer{
		ResponseWriter: w,
		rc:             http.NewResponseController(w),
		config:         config,
		start:          time.Now(),
		deadlines:      true,
	}
}

func (sw *Writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := p
		if sw.config.ChunkSize > 0 && len(chunk) > sw.config.ChunkSize {
			chunk = p[:sw.config.ChunkSize]
		}

		n, err := sw.writeChunk(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]
	}
	return total, nil
}

func (sw *Writer) writeChunk(p []byte) (int, error) {
	if sw.config.MaxDuration > 0 && time.Since(sw.start) > sw.config.MaxDuration {
		return 0, ErrWriteTimeout
	}
	sw.extendDeadline()

	n, err := sw.ResponseWriter.Write(p)
	sw.written += int64(n)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return n, ErrWriteTimeout
	}
	return n, err
}

func (sw *Writer) extendDeadline() {
	if !sw.deadlines || sw.config.WriteTimeout <= 0 {
		return
	}
	if err := sw.rc.SetWriteDeadline(time.Now().Add(sw.config.WriteTimeout)); err != nil {
		if !errors.Is(err, http.ErrNotSupported) {
			log.Debug("failed to set write deadline: %v", err)
		}
		sw.deadlines = false
	}
}

func (sw *Writer) Flush() {
	_ = sw.rc.Flush()
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (sw *Writer) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Close clears the write deadline so a kept-alive connection is not cut
// during the next request.
func (sw *Writer) Close() error {
	if sw.deadlines && sw.config.WriteTimeout > 0 {
		if err := sw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	log.Debug("transfer finished: %d bytes in %v", sw.written, time.Since(sw.start))
	return nil
}

// Stats returns the bytes written so far and the elapsed time.
func (sw *Writer) Stats() (bytesWritten int64, duration time.Duration) {
	return sw.written, time.Since(sw.start)
}

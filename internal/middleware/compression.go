package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, that gets compressed.
	MinSize int
	// Level is the gzip level, gzip.BestSpeed to gzip.BestCompression.
	Level int
	// Types are the media types worth compressing. Cache files are JPEG or
	// video and are left alone.
	Types []string
}

// DefaultCompressionConfig compresses JSON responses of 1KB or more.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		Types:   []string{"application/json", "text/plain"},
	}
}

// gzipWriter holds back the first MinSize bytes so small responses can be
// sent uncompressed.
type gzipWriter struct {
	http.ResponseWriter
	config  CompressionConfig
	pool    *sync.Pool
	gz      *gzip.Writer
	pending []byte
	status  int
	decided bool
}

func (g *gzipWriter) WriteHeader(code int) {
	if !g.decided {
		g.status = code
	}
}

func (g *gzipWriter) Write(p []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(p)
		}
		return g.ResponseWriter.Write(p)
	}

	g.pending = append(g.pending, p...)
	if len(g.pending) >= g.config.MinSize {
		if err := g.decide(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// decide sends the header, picking compression from the buffered size and
// the content type, then flushes the buffer.
func (g *gzipWriter) decide() error {
	g.decided = true

	if len(g.pending) >= g.config.MinSize && g.compressible() {
		h := g.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")
		g.gz = g.pool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
	}

	g.ResponseWriter.WriteHeader(g.status)
	buf := g.pending
	g.pending = nil
	if len(buf) == 0 {
		return nil
	}
	var err error
	if g.gz != nil {
		_, err = g.gz.Write(buf)
	} else {
		_, err = g.ResponseWriter.Write(buf)
	}
	return err
}

func (g *gzipWriter) compressible() bool {
	if g.Header().Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, _ := strings.Cut(g.Header().Get("Content-Type"), ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, t := range g.config.Types {
		if mediaType == t {
			return true
		}
	}
	return false
}

func (g *gzipWriter) Flush() {
	if !g.decided {
		_ = g.decide()
	}
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection.
func (g *gzipWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

func (g *gzipWriter) close() error {
	if !g.decided {
		if err := g.decide(); err != nil {
			return err
		}
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	g.pool.Put(g.gz)
	g.gz = nil
	return err
}

// Compression returns a middleware that gzips compressible responses for
// clients that accept it. Range requests pass through untouched.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	pool := &sync.Pool{
		New: func() interface{} {
			w, err := gzip.NewWriterLevel(nil, config.Level)
			if err != nil {
				w = gzip.NewWriter(nil)
			}
			return w
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Header.Get("Range") != "" {
				next.ServeHTTP(w, r)
				return
			}

			gw := &gzipWriter{
				ResponseWriter: w,
				config:         config,
				pool:           pool,
				status:         http.StatusOK,
			}
			defer func() {
				if err := gw.close(); err != nil {
					log.Debug("gzip close failed for %s: %v", sanitizeLogField(r.URL.Path), err)
				}
			}()
			next.ServeHTTP(gw, r)
		})
	}
}

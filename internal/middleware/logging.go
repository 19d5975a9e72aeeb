package middleware

import (
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"photo-library/internal/logging"
)

var log = logging.For("http")

// responseWriter captures the status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// LoggingConfig holds configuration for the logging middleware
type LoggingConfig struct {
	// SkipPaths are path prefixes never logged.
	SkipPaths []string
	// CachePrefix is where derived files are served; requests under it are
	// only logged with LogStaticFiles.
	CachePrefix     string
	LogStaticFiles  bool
	LogHealthChecks bool
	// Output receives access lines. Nil means stdout.
	Output io.Writer
}

// DefaultLoggingConfig returns the default configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		CachePrefix:     "/cache",
		LogStaticFiles:  false,
		LogHealthChecks: true,
	}
}

var healthCheckPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// sanitizeLogField removes control characters that could forge log lines or
// inject terminal escapes. Newlines become spaces; tabs are kept.
func sanitizeLogField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteRune(' ')
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// w3cFields is written once, ahead of the first access line.
const w3cFields = "date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken cs(User-Agent) cs(Referer)"

// Logger returns middleware that writes one W3C Extended Log Format line
// per request to config.Output. time-taken is in milliseconds.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	al := &accessLog{out: config.Output}
	if al.out == nil {
		al.out = os.Stdout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			if err := al.write(formatW3C(r, wrapped, time.Since(start))); err != nil {
				log.Warn("failed to write access log: %v", err)
			}
		})
	}
}

type accessLog struct {
	mu      sync.Mutex
	out     io.Writer
	started bool
}

func (a *accessLog) write(line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		a.started = true
		if _, err := io.WriteString(a.out, "#Version: 1.0\n#Fields: "+w3cFields+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(a.out, line+"\n")
	return err
}

func formatW3C(r *http.Request, rw *responseWriter, took time.Duration) string {
	now := time.Now().UTC()
	fields := []string{
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		orDash(getClientIP(r)),
		orDash(r.Method),
		orDash(r.URL.Path),
		orDash(r.URL.RawQuery),
		strconv.Itoa(rw.statusCode),
		strconv.FormatInt(rw.bytesWritten, 10),
		strconv.FormatInt(took.Milliseconds(), 10),
		orDash(r.Header.Get("User-Agent")),
		orDash(r.Header.Get("Referer")),
	}
	return strings.Join(fields, " ")
}

// orDash sanitizes and quotes a field, using "-" for empty values.
func orDash(s string) string {
	s = sanitizeLogField(s)
	if s == "" {
		return "-"
	}
	return escapeW3CField(s)
}

func shouldSkip(path string, config LoggingConfig) bool {
	for _, prefix := range config.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if healthCheckPaths[path] {
		return !config.LogHealthChecks
	}
	if config.CachePrefix != "" && !config.LogStaticFiles {
		return strings.HasPrefix(path, strings.TrimSuffix(config.CachePrefix, "/")+"/")
	}
	return false
}

// getClientIP prefers the proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// escapeW3CField quotes values containing whitespace or quotes, doubling
// embedded quotes.
func escapeW3CField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

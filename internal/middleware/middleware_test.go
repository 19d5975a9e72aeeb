package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"photo-library/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK) // ignored
	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	if rw.statusCode != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d/%d, want 418", rw.statusCode, rec.Code)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
}

func TestLoggerWritesW3CLine(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultLoggingConfig()
	cfg.Output = &buf

	h := Logger(cfg)(okHandler(`{"ok":true}`))
	req := httptest.NewRequest(http.MethodGet, "/api/library?limit=5", nil)
	req.Header.Set("User-Agent", "photo client/1.0")
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	h.ServeHTTP(httptest.NewRecorder(), req)
	h.ServeHTTP(httptest.NewRecorder(), req)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("log output = %q, want two directives and two lines", buf.String())
	}
	if lines[0] != "#Version: 1.0" || !strings.HasPrefix(lines[1], "#Fields: date time c-ip") {
		t.Errorf("directives = %q", lines[:2])
	}

	fields := strings.Fields(lines[2])
	if len(fields) < 11 {
		t.Fatalf("access line = %q", lines[2])
	}
	if fields[2] != "10.0.0.1" || fields[3] != "GET" || fields[4] != "/api/library" || fields[5] != "limit=5" {
		t.Errorf("request fields = %v", fields[2:6])
	}
	if fields[6] != "200" || fields[7] != "11" {
		t.Errorf("status/bytes = %s/%s", fields[6], fields[7])
	}
	if !strings.Contains(buf.String(), `"photo client/1.0"`) {
		t.Errorf("user agent not quoted: %q", buf.String())
	}
}

func TestLoggerSkips(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		static   bool
		health   bool
		wantLine bool
	}{
		{"api", "/api/albums", false, false, true},
		{"health off", "/healthz", false, false, false},
		{"health on", "/healthz", false, true, true},
		{"cache off", "/cache/thumbnails/a.jpg", false, true, false},
		{"cache on", "/cache/thumbnails/a.jpg", true, true, true},
		{"cache-like prefix", "/cachebuster", false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := DefaultLoggingConfig()
			cfg.LogStaticFiles = tt.static
			cfg.LogHealthChecks = tt.health
			cfg.Output = &buf

			Logger(cfg)(okHandler("{}")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
			if got := buf.Len() > 0; got != tt.wantLine {
				t.Errorf("logged = %v, want %v", got, tt.wantLine)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":            "plain",
		"line1\nline2":     "line1 line2",
		"a\r\nb":           "a  b",
		"\x1b[31mred":      "[31mred",
		"nul\x00byte":      "nulbyte",
		"tab\tkept":        "tab\tkept",
		"del\x7fcharacter": "delcharacter",
	}
	for in, want := range tests {
		if got := sanitizeLogField(in); got != want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := getClientIP(req); got != "192.168.1.5" {
		t.Errorf("RemoteAddr ip = %q", got)
	}
	req.RemoteAddr = "[2001:db8::1]:443"
	if got := getClientIP(req); got != "2001:db8::1" {
		t.Errorf("IPv6 RemoteAddr ip = %q", got)
	}
	req.Header.Set("X-Real-IP", "172.16.0.9")
	if got := getClientIP(req); got != "172.16.0.9" {
		t.Errorf("X-Real-IP ip = %q", got)
	}
	req.Header.Set("X-Forwarded-For", " 10.1.1.1 ")
	if got := getClientIP(req); got != "10.1.1.1" {
		t.Errorf("X-Forwarded-For ip = %q", got)
	}
}

func TestEscapeW3CField(t *testing.T) {
	if got := escapeW3CField("curl/8.0"); got != "curl/8.0" {
		t.Errorf("plain = %q", got)
	}
	if got := escapeW3CField(`say "hi" now`); got != `"say ""hi"" now"` {
		t.Errorf("quoted = %q", got)
	}
}

func gzipGet(t *testing.T, h http.Handler, acceptGzip bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/library", nil)
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip, deflate")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCompressionLargeJSON(t *testing.T) {
	body := `{"assets":[` + strings.Repeat(`{"id":"image:1"},`, 200) + `{}]}`
	h := Compression(DefaultCompressionConfig())(okHandler(body))

	rec := gzipGet(t, h, true)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != body {
		t.Error("decompressed body differs from original")
	}
}

func TestCompressionSkips(t *testing.T) {
	large := strings.Repeat("x", 4096)
	image := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = io.WriteString(w, large)
	})

	tests := []struct {
		name    string
		handler http.Handler
		accept  bool
		want    string
	}{
		{"small body", okHandler(`{"a":1}`), true, `{"a":1}`},
		{"not accepted", okHandler(large), false, large},
		{"image", image, true, large},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gzipGet(t, Compression(DefaultCompressionConfig())(tt.handler), tt.accept)
			if enc := rec.Header().Get("Content-Encoding"); enc != "" {
				t.Errorf("Content-Encoding = %q, want none", enc)
			}
			if rec.Body.String() != tt.want {
				t.Errorf("body length = %d, want %d", rec.Body.Len(), len(tt.want))
			}
		})
	}
}

func TestCompressionKeepsStatus(t *testing.T) {
	h := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Asset not found"}`)
	}))

	rec := gzipGet(t, h, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.String() != `{"error":"Asset not found"}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.Handle("/api/assets/{id}/file", okHandler("{}")).Methods(http.MethodGet)
	r.Handle("/healthz", okHandler("{}")).Methods(http.MethodGet)

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/assets/{id}/file", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"image:1", "image:2", "video:3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/assets/"+id+"/file", nil))
	}
	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("route counter increased by %v, want 3", got)
	}

	health := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")
	healthBefore := testutil.ToFloat64(health)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if testutil.ToFloat64(health) != healthBefore {
		t.Error("skipped path was recorded")
	}
}

func TestRouteLabelUnmatched(t *testing.T) {
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); got != "unmatched" {
		t.Errorf("routeLabel() = %q, want unmatched", got)
	}
}

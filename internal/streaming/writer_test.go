package streaming

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// countingWriter records the size of every write it receives.
type countingWriter struct {
	*httptest.ResponseRecorder
	sizes []int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.ResponseRecorder.Write(p)
}

func TestWriterSplitsChunks(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		payload   int
		want      []int
	}{
		{"no chunking", 0, 10, []int{10}},
		{"exact multiple", 5, 10, []int{5, 5}},
		{"remainder", 4, 10, []int{4, 4, 2}},
		{"smaller than chunk", 64, 10, []int{10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cw := &countingWriter{ResponseRecorder: httptest.NewRecorder()}
			sw := NewWriter(cw, Config{WriteTimeout: time.Second, ChunkSize: tt.chunkSize})

			n, err := sw.Write(bytes.Repeat([]byte("x"), tt.payload))
			if err != nil || n != tt.payload {
				t.Fatalf("Write() = %d, %v", n, err)
			}
			if len(cw.sizes) != len(tt.want) {
				t.Fatalf("writes = %v, want %v", cw.sizes, tt.want)
			}
			for i := range tt.want {
				if cw.sizes[i] != tt.want[i] {
					t.Errorf("writes = %v, want %v", cw.sizes, tt.want)
					break
				}
			}
			if written, _ := sw.Stats(); written != int64(tt.payload) {
				t.Errorf("Stats() bytes = %d, want %d", written, tt.payload)
			}
		})
	}
}

func TestWriterMaxDuration(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(rec, Config{MaxDuration: time.Millisecond})
	time.Sleep(5 * time.Millisecond)

	if _, err := sw.Write([]byte("late")); !errors.Is(err, ErrWriteTimeout) {
		t.Errorf("Write() error = %v, want ErrWriteTimeout", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestWriterWithoutDeadlineSupport(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(rec, DefaultConfig())

	if _, err := sw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if sw.deadlines {
		t.Error("deadlines should be disabled on a recorder")
	}
	if err := sw.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestWriterUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewWriter(rec, DefaultConfig())
	if sw.Unwrap() != http.ResponseWriter(rec) {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}

func TestWriterOverRealConnection(t *testing.T) {
	payload := strings.Repeat("0123456789", 100_000)

	closed := make(chan error, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := NewWriter(w, Config{WriteTimeout: 5 * time.Second, ChunkSize: 64 * 1024})
		http.ServeContent(sw, r, "big.bin", time.Time{}, strings.NewReader(payload))
		if !sw.deadlines {
			t.Error("deadlines should be supported on a real connection")
		}
		closed <- sw.Close()
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}

	if len(body) != len(payload) {
		t.Errorf("received %d bytes, want %d", len(body), len(payload))
	}

	// A second request may reuse the connection and must not hit a stale
	// deadline.
	resp, err = http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	for i := 0; i < 2; i++ {
		if err := <-closed; err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

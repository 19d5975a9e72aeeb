package indexer

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"photo-library/internal/catalog"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
}

func openStore(t *testing.T, mediaDir string) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"), mediaDir)
	if err != nil {
		t.Fatalf("catalog.Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func allRecords(t *testing.T, s *catalog.Store) map[string]catalog.Record {
	t.Helper()
	out := make(map[string]catalog.Record)
	kinds := []catalog.Kind{catalog.KindImage, catalog.KindVideo}
	err := s.Query(context.Background(), kinds, nil, func(r catalog.Record) error {
		out[r.Path] = r
		return nil
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	return out
}

func testConfig() ParallelWalkerConfig {
	cfg := DefaultParallelWalkerConfig()
	cfg.NumWorkers = 2
	cfg.BatchSize = 2
	cfg.ProbeVideos = false
	return cfg
}

func TestAlbumFor(t *testing.T) {
	tests := []struct {
		relPath   string
		wantID    string
		wantTitle string
	}{
		{"photo.jpg", "", ""},
		{filepath.Join("Trips", "photo.jpg"), "Trips", "Trips"},
		{filepath.Join("Trips", "2023", "photo.jpg"), "Trips/2023", "2023"},
	}

	for _, tt := range tests {
		t.Run(tt.relPath, func(t *testing.T) {
			id, title := albumFor(tt.relPath)
			if id != tt.wantID || title != tt.wantTitle {
				t.Errorf("albumFor(%q) = (%q, %q), want (%q, %q)", tt.relPath, id, title, tt.wantID, tt.wantTitle)
			}
		})
	}
}

func TestWalkBuildsRecords(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "root.png"), 8, 6)
	writePNG(t, filepath.Join(dir, "Holiday", "beach.png"), 4, 3)
	writePNG(t, filepath.Join(dir, ".hidden", "secret.png"), 2, 2)
	writePNG(t, filepath.Join(dir, ".dotfile.png"), 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("not really a video"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewParallelWalker(dir, testConfig())
	records, err := w.Walk(context.Background())
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	byPath := make(map[string]catalog.Record)
	for _, r := range records {
		byPath[r.Path] = r
	}
	if len(byPath) != 3 {
		t.Fatalf("Walk() returned %d records, want 3: %+v", len(byPath), records)
	}

	root := byPath["root.png"]
	if root.Kind != catalog.KindImage || root.Width != 8 || root.Height != 6 {
		t.Errorf("root.png = %+v", root)
	}
	if root.MimeType != "image/png" || root.AlbumID != "" {
		t.Errorf("root.png mime/album = %q/%q", root.MimeType, root.AlbumID)
	}
	if root.DateAddedSeconds == 0 || root.ByteSize == 0 {
		t.Errorf("root.png missing size or dates: %+v", root)
	}

	beach := byPath["Holiday/beach.png"]
	if beach.AlbumID != "Holiday" || beach.AlbumTitle != "Holiday" || beach.DisplayName != "beach.png" {
		t.Errorf("beach.png = %+v", beach)
	}

	clip := byPath["clip.mp4"]
	if clip.Kind != catalog.KindVideo || clip.MimeType != "video/mp4" {
		t.Errorf("clip.mp4 = %+v", clip)
	}
}

func TestWalkCancelled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := NewParallelWalker(dir, testConfig()).Walk(ctx)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("cancelled Walk() returned %d records", len(records))
	}
}

func TestIndexAddsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", filepath.Join("Album", "c.png")} {
		writePNG(t, filepath.Join(dir, name), 4, 4)
	}
	store := openStore(t, dir)

	idx := New(store, dir, 0)
	idx.SetParallelConfig(testConfig())
	completed := 0
	idx.SetOnIndexComplete(func() { completed++ })

	ctx := context.Background()
	if err := idx.Index(ctx); err != nil {
		t.Fatalf("Index() error = %v", err)
	}
	first := allRecords(t, store)
	if len(first) != 3 {
		t.Fatalf("after first index got %d records, want 3", len(first))
	}

	if err := os.Remove(filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(dir, "d.png"), 4, 4)

	if err := idx.Index(ctx); err != nil {
		t.Fatalf("second Index() error = %v", err)
	}
	second := allRecords(t, store)
	if len(second) != 3 {
		t.Fatalf("after second index got %d records, want 3: %v", len(second), second)
	}
	if _, ok := second["b.png"]; ok {
		t.Error("deleted file b.png is still cataloged")
	}
	if _, ok := second["d.png"]; !ok {
		t.Error("new file d.png was not cataloged")
	}
	if first["a.png"].ID != second["a.png"].ID {
		t.Errorf("a.png id changed from %d to %d", first["a.png"].ID, second["a.png"].ID)
	}

	if completed != 2 {
		t.Errorf("completion callback ran %d times, want 2", completed)
	}
	if !idx.IsReady() {
		t.Error("IsReady() = false after index")
	}
	status := idx.GetHealthStatus()
	if !status.Ready || status.Indexing || status.FilesIndexed != 3 {
		t.Errorf("GetHealthStatus() = %+v", status)
	}
	if status.LastIndexed.IsZero() {
		t.Error("LastIndexed is zero after index")
	}
}

func TestIndexSkipsWhenRunning(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, dir)
	idx := New(store, dir, 0)

	if !idx.tryStartIndexing() {
		t.Fatal("tryStartIndexing() = false on idle indexer")
	}
	if err := idx.Index(context.Background()); err != nil {
		t.Errorf("Index() while running error = %v", err)
	}
	if !idx.IsIndexing() {
		t.Error("concurrent Index() cleared the running flag")
	}
	idx.finishIndexing()
	if idx.IsIndexing() {
		t.Error("IsIndexing() = true after finish")
	}
}

func TestStartRunsInitialIndex(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	store := openStore(t, dir)

	idx := New(store, dir, time.Hour)
	idx.SetParallelConfig(testConfig())
	idx.Start()
	defer idx.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for !idx.IsReady() {
		if time.Now().After(deadline) {
			t.Fatal("initial index did not complete")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(allRecords(t, store)); got != 1 {
		t.Errorf("records after Start = %d, want 1", got)
	}
}

func TestProbeVideoWithFakeFFprobe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}

	bin := t.TempDir()
	script := `#!/bin/sh
cat <<'JSON'
{
  "streams": [
    {"codec_type": "audio"},
    {"codec_type": "video", "width": 1920, "height": 1080}
  ],
  "format": {
    "duration": "12.345",
    "tags": {"creation_time": "2021-05-01T10:00:00.000000Z"}
  }
}
JSON
`
	if err := os.WriteFile(filepath.Join(bin, "ffprobe"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	info, err := ProbeVideo(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("ProbeVideo() error = %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080", info.Width, info.Height)
	}
	if info.DurationMillis != 12345 {
		t.Errorf("DurationMillis = %d, want 12345", info.DurationMillis)
	}
	want := time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	if info.CreatedMillis != want {
		t.Errorf("CreatedMillis = %d, want %d", info.CreatedMillis, want)
	}
}

func TestProbeVideoFailure(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := ProbeVideo(context.Background(), "clip.mp4"); err == nil {
		t.Error("ProbeVideo() without ffprobe should fail")
	}
}

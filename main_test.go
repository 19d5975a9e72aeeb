package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"photo-library/internal/catalog"
	"photo-library/internal/handlers"
	"photo-library/internal/indexer"
	"photo-library/internal/library"
	"photo-library/internal/startup"
)

type fakeStatsStore struct {
	stats catalog.Stats
	err   error
}

func (f fakeStatsStore) Stats(context.Context) (catalog.Stats, error) {
	return f.stats, f.err
}

func TestCatalogStatsAdapter(t *testing.T) {
	a := catalogStats{store: fakeStatsStore{stats: catalog.Stats{Images: 10, Videos: 3, Albums: 2}}}
	got, err := a.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got.TotalImages != 10 || got.TotalVideos != 3 || got.TotalAlbums != 2 {
		t.Errorf("Stats() = %+v", got)
	}

	boom := errors.New("locked")
	if _, err := (catalogStats{store: fakeStatsStore{err: boom}}).Stats(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Stats() error = %v, want %v", err, boom)
	}
}

type stubLibrary struct{}

func (stubLibrary) CheckAuthorization() library.AuthorizationState {
	return library.StateAuthorized
}

func (stubLibrary) RequestAuthorization() library.AuthorizationState {
	return library.StateAuthorized
}

func (stubLibrary) GetAlbums(context.Context) ([]library.Album, error) { return nil, nil }

func (stubLibrary) GetLibrary(context.Context, library.ListingRequest) (*library.Library, error) {
	return &library.Library{}, nil
}

func (stubLibrary) GetFullResolutionFile(context.Context, string) (*library.File, error) {
	return nil, library.ErrNotFound
}

func (stubLibrary) GetThumbnailFile(context.Context, string, int, int, float64) (*library.File, error) {
	return nil, library.ErrNotFound
}

type stubIndexer struct{}

func (stubIndexer) IsReady() bool                         { return true }
func (stubIndexer) IsIndexing() bool                      { return false }
func (stubIndexer) GetHealthStatus() indexer.HealthStatus { return indexer.HealthStatus{Ready: true} }
func (stubIndexer) TriggerIndex()                         {}

func TestSetupRouter(t *testing.T) {
	config := &startup.Config{PublicCachePrefix: "/cache"}
	h := handlers.New(stubLibrary{}, stubIndexer{}, t.TempDir())
	handler := wrapHandler(setupRouter(h, config), config)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/authorization", http.StatusOK},
		{http.MethodGet, "/api/library", http.StatusOK},
		{http.MethodGet, "/api/assets/image:1/file", http.StatusNotFound},
		{http.MethodGet, "/cache/thumbnails/missing.jpg", http.StatusNotFound},
		{http.MethodDelete, "/api/albums", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/healthz", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, rec.Code, tt.want)
		}
	}
}

func TestMetricsServer(t *testing.T) {
	srv := newMetricsServer("9999")
	if srv.Addr != ":9999" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout == 0 || srv.WriteTimeout == 0 {
		t.Error("metrics server should have timeouts")
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics = %d", rec.Code)
	}
}

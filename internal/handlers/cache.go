package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"photo-library/internal/filesystem"
	"photo-library/internal/media"
	"photo-library/internal/streaming"

	"github.com/gorilla/mux"
)

// ServeCacheFile serves a derived file by the name handed out in a webPath.
// Cache files never change once written, so they may be cached for a year.
func (h *Handlers) ServeCacheFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dir, name := vars["dir"], vars["name"]

	if dir != media.ThumbnailsDir && dir != media.FilesDir {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if !validCacheName(name) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	fullPath := filepath.Join(h.cacheDir, dir, name)
	info, err := filesystem.Stat(r.Context(), fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		log.Error("failed to stat cache file %s: %v", fullPath, err)
		http.Error(w, "Failed to access file", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	f, err := filesystem.Open(r.Context(), fullPath)
	if err != nil {
		log.Error("failed to open cache file %s: %v", fullPath, err)
		http.Error(w, "Failed to access file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	sw := streaming.NewWriter(w, streaming.DefaultConfig())
	defer func() {
		if err := sw.Close(); err != nil {
			log.Debug("failed to clear write deadline for %s: %v", name, err)
		}
	}()

	sw.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(sw, r, name, info.ModTime(), f)
}

// validCacheName accepts only plain file names as written by the cache.
// Temp files start with a dot and are never served.
func validCacheName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"photo-library/internal/library"

	"github.com/gorilla/mux"
)

type authorizationResponse struct {
	State library.AuthorizationState `json:"state"`
}

// CheckAuthorization reports the current access state.
func (h *Handlers) CheckAuthorization(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, authorizationResponse{State: h.library.CheckAuthorization()})
}

// RequestAuthorization asks for access and reports the resulting state.
func (h *Handlers) RequestAuthorization(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, authorizationResponse{State: h.library.RequestAuthorization()})
}

// GetAlbums lists every album with its asset count.
func (h *Handlers) GetAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.library.GetAlbums(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if albums == nil {
		albums = []library.Album{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string][]library.Album{"albums": albums})
}

// GetLibrary returns one listing page. GET takes the options as query
// parameters, POST as a JSON body.
func (h *Handlers) GetLibrary(w http.ResponseWriter, r *http.Request) {
	var (
		req library.ListingRequest
		err error
	)
	if r.Method == http.MethodPost {
		err = decodeListingBody(r, &req)
	} else {
		req, err = listingFromQuery(r)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	lib, err := h.library.GetLibrary(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if lib.Assets == nil {
		lib.Assets = []library.Asset{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, lib)
}

// bodyError wraps a malformed request body so it maps to 400.
type bodyError struct{ err error }

func (e *bodyError) Error() string        { return "invalid request body: " + e.err.Error() }
func (e *bodyError) Unwrap() error        { return e.err }
func (e *bodyError) Is(target error) bool { return target == library.ErrValidation }

func decodeListingBody(r *http.Request, req *library.ListingRequest) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(req)
	if err != nil && !errors.Is(err, io.EOF) {
		return &bodyError{err: err}
	}
	return nil
}

func listingFromQuery(r *http.Request) (library.ListingRequest, error) {
	var req library.ListingRequest
	var err error

	ints := []struct {
		name string
		dst  **int
	}{
		{"offset", &req.Offset},
		{"limit", &req.Limit},
		{"thumbnailWidth", &req.ThumbnailWidth},
		{"thumbnailHeight", &req.ThumbnailHeight},
	}
	for _, p := range ints {
		if *p.dst, err = queryInt(r, p.name); err != nil {
			return req, err
		}
	}

	bools := []struct {
		name string
		dst  **bool
	}{
		{"includeImages", &req.IncludeImages},
		{"includeVideos", &req.IncludeVideos},
		{"includeAlbumData", &req.IncludeAlbumData},
		{"includeCloudData", &req.IncludeCloudData},
		{"useOriginalFileNames", &req.UseOriginalFileNames},
		{"includeFullResolutionData", &req.IncludeFullResolutionData},
	}
	for _, p := range bools {
		if *p.dst, err = queryBool(r, p.name); err != nil {
			return req, err
		}
	}

	req.ThumbnailQuality, err = queryFloat(r, "thumbnailQuality")
	return req, err
}

// GetFullResolutionFile returns the cached full-resolution copy of an asset.
func (h *Handlers) GetFullResolutionFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.library.GetFullResolutionFile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, file)
}

// GetThumbnailFile returns a cached thumbnail of an asset. Missing width,
// height and quality take the listing defaults.
func (h *Handlers) GetThumbnailFile(w http.ResponseWriter, r *http.Request) {
	width, height, quality := library.DefaultThumbnailWidth, library.DefaultThumbnailHeight, library.DefaultThumbnailQuality

	if v, err := queryInt(r, "width"); err != nil {
		writeServiceError(w, r, err)
		return
	} else if v != nil {
		width = *v
	}
	if v, err := queryInt(r, "height"); err != nil {
		writeServiceError(w, r, err)
		return
	} else if v != nil {
		height = *v
	}
	if v, err := queryFloat(r, "quality"); err != nil {
		writeServiceError(w, r, err)
		return
	} else if v != nil {
		quality = *v
	}

	file, err := h.library.GetThumbnailFile(r.Context(), mux.Vars(r)["id"], width, height, quality)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, file)
}

package handlers

import (
	"net/http"
	"path"

	"github.com/gorilla/mux"
)

const apiPrefix = "/api"

// RegisterRoutes adds every endpoint to r. Cache files are served under
// cachePrefix, which must match the prefix the cache puts in webPath; an
// empty prefix leaves them unserved.
//
// API routes sit on r itself rather than a PathPrefix subrouter: a subrouter
// loses the method mismatch and answers 404 where 405 is due.
func (h *Handlers) RegisterRoutes(r *mux.Router, cachePrefix string) {
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	r.HandleFunc(apiPrefix+"/authorization", h.CheckAuthorization).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/authorization", h.RequestAuthorization).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/albums", h.GetAlbums).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/library", h.GetLibrary).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc(apiPrefix+"/assets/{id}/file", h.GetFullResolutionFile).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/assets/{id}/thumbnail", h.GetThumbnailFile).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/reindex", h.TriggerReindex).Methods(http.MethodPost)

	if cachePrefix != "" {
		prefix := path.Join("/", cachePrefix)
		r.HandleFunc(prefix+"/{dir}/{name}", h.ServeCacheFile).Methods(http.MethodGet, http.MethodHead)
	}
}

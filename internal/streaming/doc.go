// Package streaming guards long response bodies against stalled clients.
//
// The HTTP server runs without a WriteTimeout because a full-resolution
// video copy can legitimately take minutes. [Writer] instead sets a write
// deadline per chunk through http.ResponseController:
//
//	sw := streaming.NewWriter(w, streaming.DefaultConfig())
//	defer sw.Close()
//	http.ServeContent(sw, r, name, modTime, f)
//
// Middleware wrappers must implement Unwrap for the deadline to reach the
// connection; when they do not, the writer degrades to a plain pass-through.
package streaming

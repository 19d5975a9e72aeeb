// Package handlers serves the photo library over HTTP.
//
// Library endpoints map service errors onto status codes: validation
// failures are 400, denied access 403, unknown assets 404 and everything
// else 500. Error bodies are {"error": message} with the service message
// unchanged.
//
// Derived files are served read-only from the cache directory under the
// names returned in webPath. Health, readiness and reindex endpoints report
// on the indexer.
package handlers

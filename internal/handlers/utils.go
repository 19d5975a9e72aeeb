package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"photo-library/internal/library"
	"photo-library/internal/workers"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged since the status line is already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatus writes v as a JSON response with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONStatus(w, statusCode, map[string]string{"error": message})
}

// statusFor maps a library error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, library.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workers.ErrPoolStopped), errors.Is(err, workers.ErrPoolNotStarted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError reports a library error with its mapped status. The
// message is passed through unchanged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		log.Debug("%s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	writeJSONError(w, err.Error(), status)
}

// paramError is returned for query parameters that do not parse.
type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return "invalid value for " + e.name + ": " + strconv.Quote(e.value)
}

// Is lets parameter errors map to 400 like other validation failures.
func (e *paramError) Is(target error) bool { return target == library.ErrValidation }

func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"planetd/internal/generator"
	"planetd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeGenerateError maps generator errors onto the wire. Invalid
// parameters keep their message; an unloaded model reports the fixed
// "Model not loaded" clients have always seen.
func writeGenerateError(w http.ResponseWriter, err error) int {
	switch {
	case generator.IsInvalidRequest(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return http.StatusUnprocessableEntity
	case generator.IsNotLoaded(err):
		writeJSONError(w, http.StatusServiceUnavailable, "Model not loaded")
		return http.StatusServiceUnavailable
	case generator.IsTooBusy(err):
		IncrementBackpressure("generate")
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
		return http.StatusTooManyRequests
	}
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), he.Error())
		return he.StatusCode()
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
	return http.StatusInternalServerError
}

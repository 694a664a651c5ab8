// Package handlers provides the HTTP handlers and middleware for the Insight
// API: analysis, memory chat and search, PDF reports, health and the
// WebSocket event stream.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/scrypster/insight/pkg/types"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInsufficientInput   = "INSUFFICIENT_INPUT"
	CodeUnsupportedDocument = "UNSUPPORTED_DOCUMENT"
	CodeSchemaValidation    = "SCHEMA_VALIDATION"
	CodeModelUnavailable    = "MODEL_UNAVAILABLE"
	CodeMemoryUnavailable   = "MEMORY_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

const maxJSONBody = 1 << 20

// respondJSON writes data as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are already sent; an encoding failure cannot be reported.
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes the standard error envelope.
func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// respondErr maps a pipeline error to its status code and writes it.
func respondErr(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	respondError(w, status, code, err.Error())
}

// StatusFor maps the error taxonomy to an HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, types.ErrInsufficientInput):
		return http.StatusBadRequest, CodeInsufficientInput
	case errors.Is(err, types.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType, CodeUnsupportedDocument
	case errors.Is(err, types.ErrSchemaValidation):
		return http.StatusBadGateway, CodeSchemaValidation
	case errors.Is(err, types.ErrModelUnavailable):
		return http.StatusServiceUnavailable, CodeModelUnavailable
	case errors.Is(err, types.ErrMemoryUnavailable):
		return http.StatusServiceUnavailable, CodeMemoryUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// decodeJSON reads a size-limited JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseInt parses s, returning defaultValue when s is empty or invalid.
func parseInt(s string, defaultValue int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

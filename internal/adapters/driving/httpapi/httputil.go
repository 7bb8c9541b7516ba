package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Error codes written in the code field of error bodies.
const (
	codeInvalidInput = "INVALID_INPUT"
	codeInvalidID    = "INVALID_ID"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeIndexSync    = "INDEX_SYNC_FAILED"
	codeUnavailable  = "SERVICE_UNAVAILABLE"
	codeInternal     = "INTERNAL_ERROR"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// writeDomainError maps a service error onto a status and code.
func writeDomainError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeError(w, status, code, err.Error())
}

// writeCommittedError reports an index failure that followed a committed
// write. The committed entity is returned with the error.
func writeCommittedError(w http.ResponseWriter, err error, data any) {
	if data == nil || !errors.Is(err, domain.ErrIndexSync) {
		writeDomainError(w, err)
		return
	}
	logger.Error("request committed but index is stale: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": err.Error(),
		"code":  codeIndexSync,
		"data":  data,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEnrichmentFailed):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, codeConflict
	case errors.Is(err, domain.ErrSearchUnavailable), errors.Is(err, domain.ErrEnrichmentUnavailable):
		return http.StatusServiceUnavailable, codeUnavailable
	case errors.Is(err, domain.ErrIndexSync):
		return http.StatusInternalServerError, codeIndexSync
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// parseID extracts a positive numeric path parameter.
func parseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &n, nil
}

type paramError struct {
	name, value string
}

func (e *paramError) Error() string {
	return "invalid " + e.name + ": " + e.value
}

func (e *paramError) Unwrap() error {
	return domain.ErrInvalidInput
}

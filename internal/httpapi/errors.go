package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"modelreg/internal/manager"
	"modelreg/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors onto HTTP status codes. The engine
// unavailable check comes before the load failure check because a missing
// backend is reported as a failed load.
func statusFor(err error) (int, string) {
	switch {
	case manager.IsBadRequest(err):
		return http.StatusBadRequest, "bad_request"
	case manager.IsModelNotFound(err):
		return http.StatusNotFound, "not_found"
	case manager.IsAlreadyLoaded(err):
		return http.StatusConflict, "already_loaded"
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, "engine_unavailable"
	case manager.IsLoadFailed(err):
		return http.StatusBadGateway, "load_failed"
	case manager.IsCacheCapacity(err):
		return http.StatusUnprocessableEntity, "cache_capacity"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), "service"
	}
	return http.StatusInternalServerError, "internal"
}

// writeServiceError maps err, counts it and writes the JSON error payload.
func writeServiceError(w http.ResponseWriter, err error) int {
	status, reason := statusFor(err)
	IncrementErrors(reason)
	writeJSONError(w, status, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

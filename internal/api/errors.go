package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlumen/rdm-gateway/internal/controller"
	"github.com/openlumen/rdm-gateway/internal/rdm"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeBackendDown = "backend_unavailable"
	ErrCodeDeviceError = "device_error"
	ErrCodeBroadcast   = "broadcast_no_data"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// renderDispatchError maps a controller error onto an HTTP error
// response. Caller mistakes map to 4xx, infrastructure failures to 503,
// device failures (nack, malformed reply) to 502.
func renderDispatchError(w http.ResponseWriter, err error) {
	var statusErr *rdm.StatusError

	switch {
	case errors.Is(err, controller.ErrSectionNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, controller.ErrValidation), errors.Is(err, controller.ErrNotWritable):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, controller.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, ErrCodeBackendDown, err.Error())
	case errors.Is(err, controller.ErrBroadcast):
		writeError(w, http.StatusBadGateway, ErrCodeBroadcast, err.Error())
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, ErrCodeDeviceError, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/apperrors"
)

// TenantMiddleware establishes the org's database scope for a request.
type TenantMiddleware func(http.HandlerFunc) http.HandlerFunc

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps well-known service errors to HTTP statuses and
// falls back to 500 with the handler-supplied code.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, serviceErr error, fallbackCode string) {
	var status int
	var code string
	switch {
	case errors.Is(serviceErr, apperrors.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(serviceErr, apperrors.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(serviceErr, apperrors.ErrInvalidProperty):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(serviceErr, apperrors.ErrTypeMismatch):
		status, code = http.StatusBadRequest, "type_mismatch"
	case errors.Is(serviceErr, apperrors.ErrInvalidMapping):
		status, code = http.StatusBadRequest, "invalid_mapping"
	default:
		status, code = http.StatusInternalServerError, fallbackCode
	}
	if err := ErrorResponse(w, status, code, serviceErr.Error()); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

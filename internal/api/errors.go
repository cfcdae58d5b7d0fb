package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pool-reporter/internal/report"
	"github.com/pool-reporter/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// Common error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeUpstreamError      = "UPSTREAM_ERROR"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// mapReportError maps report engine errors to HTTP status codes.
func mapReportError(err error) (int, string, string) {
	switch {
	case errors.Is(err, report.ErrInvalidFilter):
		return http.StatusBadRequest, ErrCodeInvalidInput, err.Error()
	case errors.Is(err, report.ErrUnsupportedReportType):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, report.ErrSourceQuery):
		return http.StatusBadGateway, ErrCodeUpstreamError, "The indexing service could not be reached"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "Report derivation timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred"
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"ocean-query-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// Map resolution errors to HTTP statuses. Store details never reach clients.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoParameter):
		return http.StatusBadRequest, domain.ErrNoParameter.Error()
	case errors.Is(err, domain.ErrUnknownParameter):
		return http.StatusBadRequest, domain.ErrUnknownParameter.Error()
	case errors.Is(err, domain.ErrNoDataForParameter):
		return http.StatusNotFound, domain.ErrNoDataForParameter.Error()
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "query timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

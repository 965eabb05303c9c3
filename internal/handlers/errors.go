package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"notesqa/internal/contextutil"
	"notesqa/internal/service"
)

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleServiceError maps service-layer error kinds onto HTTP statuses.
func handleServiceError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrQuotaExhausted):
		logger.ErrorContext(ctx, "provider quota exhausted", "error", err)
		writeError(w, http.StatusTooManyRequests, "Provider quota exhausted, try again later")
	case errors.Is(err, service.ErrRetrieval):
		logger.ErrorContext(ctx, "vector store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
	case errors.Is(err, service.ErrEmbedding), errors.Is(err, service.ErrGeneration):
		logger.ErrorContext(ctx, "provider error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	case errors.Is(err, service.ErrTimeout):
		logger.ErrorContext(ctx, "request timed out", "error", err)
		writeError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.ErrorContext(ctx, "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

// userIDFromRequest reads the authenticated user's identifier. The
// gateway in front of this service sets the header after auth.
func userIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

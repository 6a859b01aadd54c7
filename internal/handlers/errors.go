package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"faqsearch/internal/contextutil"
	"faqsearch/internal/service"
)

// ErrorResponse represents an error response. Kind is machine-readable;
// Error is a human-readable detail.
type ErrorResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, kind, message string) {
	writeJSON(w, statusCode, ErrorResponse{Kind: kind, Error: message})
}

// handleServiceError maps service errors to appropriate HTTP status codes
// and responses.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, "invalid_input", validationErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, service.ErrSourceUnavailable):
		writeError(w, http.StatusBadGateway, "source_unavailable", "Document source unavailable")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "external_service", "External service error")
	default:
		writeError(w, http.StatusInternalServerError, "internal", defaultMsg)
	}
}

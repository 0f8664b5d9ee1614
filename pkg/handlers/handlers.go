// Package handlers provides shared HTTP response helpers for domain handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON envelope for error responses.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondError logs the error and writes it as a JSON error body.
// Server-side failures (5xx) log at error level; client failures log at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	RespondJSON(w, status, ErrorBody{Error: err.Error()})
}

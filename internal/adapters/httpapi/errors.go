package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"orgdirectory/pkg/domain"
)

// FieldError describes one rejected request parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeValidation(w http.ResponseWriter, details []FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"status":  "error",
		"message": "Validation Error",
		"details": details,
	})
}

// writeServiceError maps engine errors onto status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound domain.ErrNotFound
	var invalid domain.ValidationError
	switch {
	case errors.As(err, &notFound):
		writeMessage(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		writeMessage(w, http.StatusBadRequest, invalid.Message)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("request cancelled", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

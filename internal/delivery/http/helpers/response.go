package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"technika/internal/adapters/telemetry"
	"technika/internal/domain"
)

// ErrorResponse is the error envelope. Error is always true so clients can
// branch on it without inspecting the HTTP status.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// WriteSuccess writes a JSON body with success set to true and the given
// fields merged in at the top level.
func WriteSuccess(w http.ResponseWriter, statusCode int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteData writes a JSON body as-is, for endpoints whose wire shape is a
// bare object or array rather than the success envelope.
func WriteData(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes the error envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string, details ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: true, Message: message, Details: details})
}

// WriteDomainError maps a service error onto the HTTP taxonomy. Anything
// outside the sentinel set is a 500 with a generic body; the real error is
// logged but never leaked to the client.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUpstream):
		WriteError(w, http.StatusBadGateway, "booking provider unavailable")
	default:
		uid := ""
		if id, ok := domain.IdentityFromContext(r.Context()); ok {
			uid = id.UID
		}
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "method", r.Method, "uid", uid, "err", err)
		telemetry.CaptureRequestError(err, r, uid)
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	h "technika/internal/delivery/http/helpers"
)

const webhookTokenHeader = "x-webhook-token"

// RequireWebhookToken authenticates inbound provider webhooks against the
// shared secret. The length check runs before the constant-time comparison
// so mismatched lengths never reach the byte comparison. An unconfigured
// secret is a server fault, not an auth failure.
func RequireWebhookToken(secret string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				logger.Error("webhook secret not configured")
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			presented := r.Header.Get(webhookTokenHeader)
			if len(presented) != len(secret) ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				h.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next(w, r)
		}
	}
}

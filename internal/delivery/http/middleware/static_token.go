package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	h "technika/internal/delivery/http/helpers"
)

// RequireStaticToken authenticates requests carrying the shared operator
// token as a bearer credential. It guards the raw provider proxy routes,
// which are not tied to a user identity.
func RequireStaticToken(token string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Error("static auth token not configured")
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if len(presented) != len(token) ||
				subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				h.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next(w, r)
		}
	}
}

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	h "technika/internal/delivery/http/helpers"
	"technika/internal/domain"
)

// RequireAuth returns a wrapper that validates the Bearer token and sets the
// verified identity in the request context. Missing or invalid credentials
// respond 401 and next is not called.
func RequireAuth(verifier domain.IdentityVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				h.WriteError(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				h.WriteError(w, http.StatusUnauthorized, "missing token")
				return
			}
			id, err := verifier.Verify(token)
			if err != nil {
				h.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(domain.WithIdentity(r.Context(), id))
			next(w, r)
		}
	}
}

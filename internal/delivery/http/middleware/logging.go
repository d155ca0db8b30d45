package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (n int, err error) {
	n, err = w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// quietPath reports whether a request path is excluded from access logging.
// Prometheus scrapes and swagger assets would otherwise dominate the log.
func quietPath(path string) bool {
	return path == "/metrics" || strings.HasPrefix(path, "/swagger/")
}

// LoggingMiddleware logs each request with method, path, matched route,
// status, response size, and duration. It does not log request or response
// bodies.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		if quietPath(r.URL.Path) {
			return
		}
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", wrapped.status,
			"bytes", wrapped.written,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

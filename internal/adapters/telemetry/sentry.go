package telemetry

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Enabled reports whether Sentry reporting is active for this process.
// It requires a DSN, a production environment, and no explicit opt-out.
func Enabled(dsn, environment string, disabled bool) bool {
	return dsn != "" && environment == "production" && !disabled
}

// Init initializes the Sentry SDK. Call Flush before process exit.
func Init(dsn, environment string, logger *slog.Logger) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		SendDefaultPII:   true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return err
	}
	logger.Info("sentry initialized")
	return nil
}

// Flush drains buffered events; call on shutdown.
func Flush() {
	sentry.Flush(2 * time.Second)
}

// CaptureRequestError reports an unexpected handler error with request
// context. The inbound Authorization header is stripped before forwarding.
func CaptureRequestError(err error, r *http.Request, uid string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		headers := map[string]string{}
		for k := range r.Header {
			if http.CanonicalHeaderKey(k) == "Authorization" {
				continue
			}
			headers[k] = r.Header.Get(k)
		}
		scope.SetExtras(map[string]any{
			"route":   r.URL.Path,
			"method":  r.Method,
			"query":   r.URL.RawQuery,
			"headers": headers,
		})
		if uid == "" {
			uid = "unauthenticated"
		}
		scope.SetUser(sentry.User{ID: uid})
		sentry.CaptureException(err)
	})
}

package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRequireWebhookToken(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		presented  string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid token", secret: "s3cret", presented: "s3cret", wantStatus: http.StatusOK, wantCalled: true},
		{name: "wrong token", secret: "s3cret", presented: "guess1", wantStatus: http.StatusUnauthorized},
		{name: "length mismatch", secret: "s3cret", presented: "s3", wantStatus: http.StatusUnauthorized},
		{name: "missing token", secret: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured secret", presented: "anything", wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := RequireWebhookToken(tt.secret, discardLogger())(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			if tt.presented != "" {
				req.Header.Set("x-webhook-token", tt.presented)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantCalled, called)
		})
	}
}

func TestRequireStaticToken(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{name: "valid bearer", token: "op-token", header: "Bearer op-token", wantStatus: http.StatusOK},
		{name: "wrong token", token: "op-token", header: "Bearer nope-nope", wantStatus: http.StatusUnauthorized},
		{name: "no bearer prefix", token: "op-token", header: "op-token", wantStatus: http.StatusOK},
		{name: "missing header", token: "op-token", wantStatus: http.StatusUnauthorized},
		{name: "unconfigured token", header: "Bearer anything", wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireStaticToken(tt.token, discardLogger())(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/booking", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

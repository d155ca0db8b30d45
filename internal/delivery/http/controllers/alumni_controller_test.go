package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technika/internal/domain"
)

// fakeAlumniService implements domain.AlumniService for handler tests.
type fakeAlumniService struct {
	registerRes *domain.RegisterResult
	registerErr error
	status      domain.PaymentStatus
	details     *domain.AlumniDetails
	statusErr   error
}

func (f *fakeAlumniService) Register(ctx context.Context, id domain.Identity, req *domain.AlumniRegisterRequest) (*domain.RegisterResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerRes, nil
}

func (f *fakeAlumniService) Status(ctx context.Context, id domain.Identity) (domain.PaymentStatus, *domain.AlumniDetails, error) {
	if f.statusErr != nil {
		return "", nil, f.statusErr
	}
	return f.status, f.details, nil
}

func testControllerLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := domain.WithIdentity(req.Context(), domain.Identity{UID: "user-123", Email: "user@example.com"})
	return req.WithContext(ctx)
}

func TestAlumniController_Register(t *testing.T) {
	validBody := map[string]any{
		"name":          "Riya Sen",
		"email":         "riya@example.com",
		"phone":         "9876543210",
		"yearOfPassing": 2019,
		"size":          "M",
	}

	tests := []struct {
		name       string
		body       map[string]any
		authed     bool
		fake       *fakeAlumniService
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:   "pending payment",
			body:   validBody,
			authed: true,
			fake: &fakeAlumniService{registerRes: &domain.RegisterResult{
				Status:     domain.StatusPendingPayment,
				PaymentURL: "https://pay.example/x",
			}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, string(domain.StatusPendingPayment), body["status"])
				assert.Equal(t, "https://pay.example/x", body["paymentUrl"])
			},
		},
		{
			name:       "invalid payload",
			body:       map[string]any{"name": "R"},
			authed:     true,
			fake:       &fakeAlumniService{},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["error"])
			},
		},
		{
			name:       "unauthenticated",
			body:       validBody,
			fake:       &fakeAlumniService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "provider down",
			body:       validBody,
			authed:     true,
			fake:       &fakeAlumniService{registerErr: domain.ErrUpstream},
			wantStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAlumniController(testControllerLogger(), tt.fake)
			raw, err := json.Marshal(tt.body)
			require.NoError(t, err)

			var req *http.Request
			if tt.authed {
				req = authedRequest(http.MethodPost, "/alumni/register", raw)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/alumni/register", bytes.NewReader(raw))
			}
			rec := httptest.NewRecorder()
			ctrl.Register(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				tt.check(t, body)
			}
		})
	}
}

func TestAlumniController_Status(t *testing.T) {
	fake := &fakeAlumniService{
		status:  domain.StatusConfirmed,
		details: &domain.AlumniDetails{Name: "Riya Sen", Size: "M"},
	}
	ctrl := NewAlumniController(testControllerLogger(), fake)

	rec := httptest.NewRecorder()
	ctrl.Status(rec, authedRequest(http.MethodGet, "/alumni/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.StatusConfirmed), body["status"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Riya Sen", details["name"])
}

package services

import (
	"context"
	"testing"
	"time"

	"technika/internal/domain"

	"github.com/stretchr/testify/require"
)

func fetchResponse(status string, ticketID int, meta map[string]any) *domain.FetchBookingResponse {
	resp := &domain.FetchBookingResponse{Status: status, MetaData: meta}
	resp.Ticket.ID = ticketID
	return resp
}

func newTestReconciler(provider domain.BookingProvider, alumni *mockRegistrationStore, events *mockEventRepo, merch *mockMerchRepo, delegates *mockDelegateRepo, email *mockEmailService) *Reconciler {
	stores := map[domain.Category]CategoryStore{}
	if alumni != nil {
		stores[domain.CategoryAlumni] = alumni
	}
	var emailSvc domain.EmailService
	if email != nil {
		emailSvc = email
	}
	return NewReconciler(provider, stores, delegates, events, merch, nil, emailSvc, testLogger())
}

func TestReconciler_RefreshRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed is terminal, no provider call", func(t *testing.T) {
		provider := &mockProvider{}
		store := newMockRegistrationStore()
		rec := &domain.Registration{OwnerUID: "uid-1", PaymentStatus: domain.StatusConfirmed, BookingRef: "bk-1"}
		require.NoError(t, store.Create(ctx, rec))

		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		status, err := r.RefreshRegistration(ctx, domain.CategoryAlumni, store, rec)
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, status)
		require.Zero(t, provider.fetchCalls)
	})

	t.Run("null provider status means no change", func(t *testing.T) {
		provider := &mockProvider{fetchResp: fetchResponse("", domain.TicketAlumni, nil)}
		store := newMockRegistrationStore()
		rec := &domain.Registration{OwnerUID: "uid-1", PaymentStatus: domain.StatusPendingPayment, BookingRef: "bk-1"}
		require.NoError(t, store.Create(ctx, rec))

		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		status, err := r.RefreshRegistration(ctx, domain.CategoryAlumni, store, rec)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPendingPayment, status)

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusPendingPayment, stored.PaymentStatus)
	})

	t.Run("status change persists and confirms by email", func(t *testing.T) {
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketAlumni, nil)}
		store := newMockRegistrationStore()
		email := &mockEmailService{}
		rec := &domain.Registration{
			OwnerUID:      "uid-1",
			Contact:       domain.ContactInfo{Name: "Asha", Email: "asha@example.com"},
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-1",
		}
		require.NoError(t, store.Create(ctx, rec))

		r := newTestReconciler(provider, store, nil, nil, nil, email)
		status, err := r.RefreshRegistration(ctx, domain.CategoryAlumni, store, rec)
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, status)

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusConfirmed, stored.PaymentStatus)
		require.Len(t, email.sent, 1)
		require.Equal(t, "asha@example.com", email.sent[0].Email)
	})
}

func TestReconciler_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms a pending registration", func(t *testing.T) {
		store := newMockRegistrationStore()
		require.NoError(t, store.Create(ctx, &domain.Registration{
			OwnerUID:      "uid-1",
			Contact:       domain.ContactInfo{Email: "asha@example.com"},
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-1",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketAlumni, nil)}
		email := &mockEmailService{}

		r := newTestReconciler(provider, store, nil, nil, nil, email)
		r.HandleWebhook(ctx, "bk-1")

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusConfirmed, stored.PaymentStatus)
		require.Len(t, email.sent, 1)
	})

	t.Run("duplicate delivery is a no-op", func(t *testing.T) {
		store := newMockRegistrationStore()
		require.NoError(t, store.Create(ctx, &domain.Registration{
			OwnerUID:      "uid-1",
			Contact:       domain.ContactInfo{Email: "asha@example.com"},
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-1",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketAlumni, nil)}
		email := &mockEmailService{}

		r := newTestReconciler(provider, store, nil, nil, nil, email)
		r.HandleWebhook(ctx, "bk-1")
		r.HandleWebhook(ctx, "bk-1")

		require.Len(t, email.sent, 1)
	})

	t.Run("stale webhook cannot regress a confirmed status", func(t *testing.T) {
		store := newMockRegistrationStore()
		require.NoError(t, store.Create(ctx, &domain.Registration{
			OwnerUID:      "uid-1",
			PaymentStatus: domain.StatusConfirmed,
			BookingRef:    "bk-1",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("cancelled", domain.TicketAlumni, nil)}

		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		r.HandleWebhook(ctx, "bk-1")

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusConfirmed, stored.PaymentStatus)
	})

	t.Run("unknown ticket id writes nothing", func(t *testing.T) {
		store := newMockRegistrationStore()
		require.NoError(t, store.Create(ctx, &domain.Registration{
			OwnerUID:      "uid-1",
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-1",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", 9999, nil)}

		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		r.HandleWebhook(ctx, "bk-1")

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusPendingPayment, stored.PaymentStatus)
	})

	t.Run("unknown booking ref acknowledged without error", func(t *testing.T) {
		store := newMockRegistrationStore()
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketAlumni, nil)}
		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		r.HandleWebhook(ctx, "bk-unknown")
	})

	t.Run("event webhook scoped by metadata event id", func(t *testing.T) {
		events := newMockEventRepo()
		require.NoError(t, events.CreateOwner(ctx, &domain.EventRegistration{
			OwnerUID: "uid-1",
			Contact:  domain.ContactInfo{Email: "asha@example.com"},
		}))
		require.NoError(t, events.UpsertEntry(ctx, "uid-1", &domain.EventEntry{
			EventID:       204,
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-ev",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketEvent, map[string]any{"eventId": float64(204)})}
		email := &mockEmailService{}

		r := newTestReconciler(provider, nil, events, nil, nil, email)
		r.HandleWebhook(ctx, "bk-ev")

		entry, err := events.GetEntry(ctx, "uid-1", 204)
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, entry.PaymentStatus)
		require.Len(t, email.sent, 1)
	})

	t.Run("event webhook without metadata acknowledged, no write", func(t *testing.T) {
		events := newMockEventRepo()
		require.NoError(t, events.UpsertEntry(ctx, "uid-1", &domain.EventEntry{
			EventID:       204,
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-ev",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketEvent, nil)}

		r := newTestReconciler(provider, nil, events, nil, nil, nil)
		r.HandleWebhook(ctx, "bk-ev")

		entry, err := events.GetEntry(ctx, "uid-1", 204)
		require.NoError(t, err)
		require.Equal(t, domain.StatusPendingPayment, entry.PaymentStatus)
	})

	t.Run("merch webhook updates the order", func(t *testing.T) {
		merch := newMockMerchRepo()
		now := time.Now()
		require.NoError(t, merch.Create(ctx, &domain.MerchOrder{
			ID:            "bk-merch",
			OwnerUID:      "uid-1",
			Contact:       domain.ContactInfo{Email: "asha@example.com"},
			Item:          domain.MerchItem{Type: "tee", Quantity: 1},
			PaymentStatus: domain.StatusPendingPayment,
			CreatedAt:     now,
			UpdatedAt:     now,
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketMerchTee, nil)}
		email := &mockEmailService{}

		r := newTestReconciler(provider, nil, nil, merch, nil, email)
		r.HandleWebhook(ctx, "bk-merch")

		order, err := merch.GetByID(ctx, "bk-merch")
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, order.PaymentStatus)
		require.Len(t, email.sent, 1)
	})

	t.Run("delegate webhook updates the record", func(t *testing.T) {
		delegates := newMockDelegateRepo()
		delegates.byUID["uid-1"] = &domain.DelegateRecord{
			OwnerUID:      "uid-1",
			Contact:       domain.ContactInfo{Email: "ravi@example.com"},
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-del",
		}
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketDelegate, nil)}
		email := &mockEmailService{}

		r := newTestReconciler(provider, nil, nil, nil, delegates, email)
		r.HandleWebhook(ctx, "bk-del")

		require.Equal(t, domain.StatusConfirmed, delegates.byUID["uid-1"].PaymentStatus)
		require.Len(t, email.sent, 1)
	})

	t.Run("cancelled maps to failed", func(t *testing.T) {
		store := newMockRegistrationStore()
		require.NoError(t, store.Create(ctx, &domain.Registration{
			OwnerUID:      "uid-1",
			PaymentStatus: domain.StatusPendingPayment,
			BookingRef:    "bk-1",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("cancelled", domain.TicketAlumni, nil)}

		r := newTestReconciler(provider, store, nil, nil, nil, nil)
		r.HandleWebhook(ctx, "bk-1")

		stored, _ := store.GetByOwner(ctx, "uid-1")
		require.Equal(t, domain.StatusFailed, stored.PaymentStatus)
	})
}

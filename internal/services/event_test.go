package services

import (
	"context"
	"testing"
	"time"

	"technika/internal/domain"

	"github.com/stretchr/testify/require"
)

func newTestEventService(repo domain.EventRepository, provider domain.BookingProvider) domain.EventService {
	grant := BitEmailGrant("bitmesra.ac.in")
	return NewEventService(repo, provider, grant, "https://technika.org.in/event/callback", testLogger(), 5*time.Second)
}

func TestEventService_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("paid event books through the provider with event metadata", func(t *testing.T) {
		repo := newMockEventRepo()
		provider := &mockProvider{createResp: bookingResponse("bk-ev", "pending-payment", "https://pay.tiqr.events/pg/ev")}
		svc := newTestEventService(repo, provider)

		res, err := svc.Book(ctx, domain.Identity{UID: "uid-1", Email: "asha@example.com"}, &domain.EventBookRequest{
			EventID: 204, Name: "Asha Rao", Phone: "9876543210",
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusPendingPayment, res.Status)
		require.Equal(t, domain.TicketEvent, provider.lastCreate.Ticket)
		require.Equal(t, 204, provider.lastCreate.MetaData["eventId"])

		entry, err := repo.GetEntry(ctx, "uid-1", 204)
		require.NoError(t, err)
		require.Equal(t, "bk-ev", entry.BookingRef)
	})

	t.Run("bit student with institute email is confirmed for free", func(t *testing.T) {
		repo := newMockEventRepo()
		provider := &mockProvider{}
		svc := newTestEventService(repo, provider)

		res, err := svc.Book(ctx, domain.Identity{UID: "uid-1", Email: "btech123@bitmesra.ac.in"}, &domain.EventBookRequest{
			EventID: 204, Name: "Asha Rao", Phone: "9876543210", IsBitStudent: true,
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, res.Status)
		require.Zero(t, provider.createCalls)
	})

	t.Run("bit assertion with foreign email is forbidden", func(t *testing.T) {
		repo := newMockEventRepo()
		provider := &mockProvider{}
		svc := newTestEventService(repo, provider)

		_, err := svc.Book(ctx, domain.Identity{UID: "uid-1", Email: "asha@gmail.com"}, &domain.EventBookRequest{
			EventID: 204, Name: "Asha Rao", Phone: "9876543210", IsBitStudent: true,
		})
		require.ErrorIs(t, err, domain.ErrForbidden)
		require.Zero(t, provider.createCalls)
	})

	t.Run("free event id skips the provider", func(t *testing.T) {
		repo := newMockEventRepo()
		provider := &mockProvider{}
		svc := newTestEventService(repo, provider)

		res, err := svc.Book(ctx, domain.Identity{UID: "uid-1", Email: "asha@gmail.com"}, &domain.EventBookRequest{
			EventID: 111, Name: "Asha Rao", Phone: "9876543210",
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, res.Status)
		require.Zero(t, provider.createCalls)
	})

	t.Run("confirmed entry is idempotent", func(t *testing.T) {
		repo := newMockEventRepo()
		require.NoError(t, repo.CreateOwner(ctx, &domain.EventRegistration{OwnerUID: "uid-1"}))
		require.NoError(t, repo.UpsertEntry(ctx, "uid-1", &domain.EventEntry{
			EventID: 204, PaymentStatus: domain.StatusConfirmed,
		}))
		provider := &mockProvider{}
		svc := newTestEventService(repo, provider)

		res, err := svc.Book(ctx, domain.Identity{UID: "uid-1", Email: "asha@gmail.com"}, &domain.EventBookRequest{
			EventID: 204, Name: "Asha Rao", Phone: "9876543210",
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, res.Status)
		require.Zero(t, provider.createCalls)
	})
}

func TestEventService_StatusAndRegistered(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered event", func(t *testing.T) {
		svc := newTestEventService(newMockEventRepo(), &mockProvider{})
		status, err := svc.Status(ctx, domain.Identity{UID: "uid-1"}, 204)
		require.NoError(t, err)
		require.Equal(t, domain.StatusUnregistered, status)
	})

	t.Run("pull refresh persists a provider confirmation", func(t *testing.T) {
		repo := newMockEventRepo()
		require.NoError(t, repo.UpsertEntry(ctx, "uid-1", &domain.EventEntry{
			EventID: 204, PaymentStatus: domain.StatusPendingPayment, BookingRef: "bk-ev",
		}))
		provider := &mockProvider{fetchResp: fetchResponse("confirmed", domain.TicketEvent, nil)}
		svc := newTestEventService(repo, provider)

		status, err := svc.Status(ctx, domain.Identity{UID: "uid-1"}, 204)
		require.NoError(t, err)
		require.Equal(t, domain.StatusConfirmed, status)

		entry, _ := repo.GetEntry(ctx, "uid-1", 204)
		require.Equal(t, domain.StatusConfirmed, entry.PaymentStatus)
	})

	t.Run("registered lists per-event statuses", func(t *testing.T) {
		repo := newMockEventRepo()
		require.NoError(t, repo.CreateOwner(ctx, &domain.EventRegistration{OwnerUID: "uid-1"}))
		require.NoError(t, repo.UpsertEntry(ctx, "uid-1", &domain.EventEntry{EventID: 111, PaymentStatus: domain.StatusConfirmed}))
		require.NoError(t, repo.UpsertEntry(ctx, "uid-1", &domain.EventEntry{EventID: 204, PaymentStatus: domain.StatusPendingPayment}))
		svc := newTestEventService(repo, &mockProvider{})

		out, err := svc.Registered(ctx, domain.Identity{UID: "uid-1"})
		require.NoError(t, err)
		require.Equal(t, map[int]domain.PaymentStatus{
			111: domain.StatusConfirmed,
			204: domain.StatusPendingPayment,
		}, out)
	})
}

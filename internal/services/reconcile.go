package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"technika/internal/domain"
	"technika/internal/platform/metrics"
)

// CategoryStore is the slice of RegistrationStore the push path needs.
type CategoryStore interface {
	GetByBookingRef(ctx context.Context, bookingRef string) (*domain.Registration, error)
	UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error)
}

// DelegateReconcileStore is the delegate-side surface used by reconciliation.
type DelegateReconcileStore interface {
	GetByBookingRef(ctx context.Context, bookingRef string) (*domain.DelegateRecord, error)
	UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error)
}

// Reconciler keeps local payment statuses convergent with the provider.
// The pull path serves the status endpoints; the push path serves webhooks.
type Reconciler struct {
	provider  domain.BookingProvider
	stores    map[domain.Category]CategoryStore
	delegates DelegateReconcileStore
	events    domain.EventRepository
	merch     domain.MerchRepository
	tickets   CategoryStore
	email     domain.EmailService
	logger    *slog.Logger
	now       func() time.Time
}

func NewReconciler(
	provider domain.BookingProvider,
	stores map[domain.Category]CategoryStore,
	delegates DelegateReconcileStore,
	events domain.EventRepository,
	merch domain.MerchRepository,
	tickets CategoryStore,
	email domain.EmailService,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		provider:  provider,
		stores:    stores,
		delegates: delegates,
		events:    events,
		merch:     merch,
		tickets:   tickets,
		email:     email,
		logger:    logger,
		now:       time.Now,
	}
}

// RefreshRegistration is the pull path for a loaded record. Confirmed is
// terminal and never triggers a provider call. A null or absent provider
// status leaves the stored state untouched.
func (r *Reconciler) RefreshRegistration(ctx context.Context, category domain.Category, store domain.RegistrationStore, reg *domain.Registration) (domain.PaymentStatus, error) {
	if reg.PaymentStatus.Terminal() || reg.BookingRef == "" {
		return reg.PaymentStatus, nil
	}

	fetched, err := r.provider.FetchBooking(ctx, reg.BookingRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return reg.PaymentStatus, nil
		}
		return "", err
	}

	status := domain.ParseProviderStatus(fetched.Status)
	if status == "" || status == reg.PaymentStatus {
		return reg.PaymentStatus, nil
	}

	changed, err := store.UpdateStatusByBookingRef(ctx, reg.BookingRef, status, r.now())
	if err != nil {
		return "", fmt.Errorf("persist refreshed status: %w", err)
	}
	if changed && status == domain.StatusConfirmed {
		r.notifyConfirmed(ctx, reg.Contact.Email, reg.Contact.Name, category)
	}
	return status, nil
}

// HandleWebhook is the push path. The webhook body's status claim is never
// trusted; the booking is re-fetched from the provider and its ticket id
// selects the owning category. Unknown tickets and missing records are
// acknowledged without a write so the provider does not retry forever.
func (r *Reconciler) HandleWebhook(ctx context.Context, bookingUID string) {
	fetched, err := r.provider.FetchBooking(ctx, bookingUID)
	if err != nil {
		r.logger.Warn("webhook booking fetch failed", "booking_uid", bookingUID, "error", err)
		metrics.IncWebhookProcessed("fetch_failed")
		return
	}

	status := domain.ParseProviderStatus(fetched.Status)
	if status == "" {
		r.logger.Warn("webhook booking carries no status", "booking_uid", bookingUID)
		metrics.IncWebhookProcessed("no_status")
		return
	}

	category, ok := domain.TicketCategory(fetched.Ticket.ID)
	if !ok {
		r.logger.Info("webhook for unmapped ticket ignored",
			"booking_uid", bookingUID, "ticket", fetched.Ticket.ID)
		metrics.IncWebhookProcessed("unmapped_ticket")
		return
	}

	var applied bool
	switch category {
	case domain.CategoryEvent:
		applied = r.applyEvent(ctx, bookingUID, status, fetched.MetaData)
	case domain.CategoryMerch:
		applied = r.applyMerch(ctx, bookingUID, status)
	case domain.CategoryDelegate:
		applied = r.applyDelegate(ctx, bookingUID, status)
	default:
		applied = r.applyRegistration(ctx, category, bookingUID, status)
	}

	// Generic paid-ticket bookings share the provider ticket ids with the
	// category tables but live in their own table.
	if !applied && r.tickets != nil {
		applied = r.applyTickets(ctx, bookingUID, status)
	}
	if applied {
		metrics.IncWebhookProcessed("applied")
	} else {
		metrics.IncWebhookProcessed("no_change")
	}
}

func (r *Reconciler) applyTickets(ctx context.Context, bookingUID string, status domain.PaymentStatus) bool {
	changed, err := r.tickets.UpdateStatusByBookingRef(ctx, bookingUID, status, r.now())
	if err != nil {
		r.logger.Error("webhook ticket-booking update failed", "booking_uid", bookingUID, "error", err)
		return false
	}
	if !changed {
		return false
	}
	r.logger.Info("webhook applied", "category", "booking", "booking_uid", bookingUID, "status", status)
	if status == domain.StatusConfirmed {
		if reg, err := r.tickets.GetByBookingRef(ctx, bookingUID); err == nil {
			r.notifyConfirmed(ctx, reg.Contact.Email, reg.Contact.Name, "")
		}
	}
	return true
}

func (r *Reconciler) applyRegistration(ctx context.Context, category domain.Category, bookingUID string, status domain.PaymentStatus) bool {
	store, ok := r.stores[category]
	if !ok {
		r.logger.Warn("no store wired for category", "category", category)
		return false
	}
	changed, err := store.UpdateStatusByBookingRef(ctx, bookingUID, status, r.now())
	if err != nil {
		r.logger.Error("webhook status update failed",
			"category", category, "booking_uid", bookingUID, "error", err)
		return false
	}
	if !changed {
		r.logger.Info("webhook no-op", "category", category, "booking_uid", bookingUID, "status", status)
		return false
	}
	r.logger.Info("webhook applied", "category", category, "booking_uid", bookingUID, "status", status)
	if status == domain.StatusConfirmed {
		if reg, err := store.GetByBookingRef(ctx, bookingUID); err == nil {
			r.notifyConfirmed(ctx, reg.Contact.Email, reg.Contact.Name, category)
		}
	}
	return true
}

func (r *Reconciler) applyDelegate(ctx context.Context, bookingUID string, status domain.PaymentStatus) bool {
	changed, err := r.delegates.UpdateStatusByBookingRef(ctx, bookingUID, status, r.now())
	if err != nil {
		r.logger.Error("webhook delegate update failed", "booking_uid", bookingUID, "error", err)
		return false
	}
	if !changed {
		r.logger.Info("webhook no-op", "category", domain.CategoryDelegate, "booking_uid", bookingUID, "status", status)
		return false
	}
	r.logger.Info("webhook applied", "category", domain.CategoryDelegate, "booking_uid", bookingUID, "status", status)
	if status == domain.StatusConfirmed {
		if rec, err := r.delegates.GetByBookingRef(ctx, bookingUID); err == nil {
			r.notifyConfirmed(ctx, rec.Contact.Email, rec.Contact.Name, domain.CategoryDelegate)
		}
	}
	return true
}

func (r *Reconciler) applyMerch(ctx context.Context, bookingUID string, status domain.PaymentStatus) bool {
	changed, err := r.merch.UpdateStatusByBookingRef(ctx, bookingUID, status, r.now())
	if err != nil {
		r.logger.Error("webhook merch update failed", "booking_uid", bookingUID, "error", err)
		return false
	}
	if !changed {
		r.logger.Info("webhook no-op", "category", domain.CategoryMerch, "booking_uid", bookingUID, "status", status)
		return false
	}
	r.logger.Info("webhook applied", "category", domain.CategoryMerch, "booking_uid", bookingUID, "status", status)
	if status == domain.StatusConfirmed {
		if order, err := r.merch.GetByID(ctx, bookingUID); err == nil {
			r.notifyConfirmed(ctx, order.Contact.Email, order.Contact.Name, domain.CategoryMerch)
		}
	}
	return true
}

func (r *Reconciler) applyEvent(ctx context.Context, bookingUID string, status domain.PaymentStatus, metaData map[string]any) bool {
	eventID, ok := metaEventID(metaData)
	if !ok {
		r.logger.Warn("event webhook without eventId metadata", "booking_uid", bookingUID)
		return false
	}
	changed, err := r.events.UpdateEntryStatusByBookingRef(ctx, bookingUID, eventID, status, r.now())
	if err != nil {
		r.logger.Error("webhook event update failed",
			"booking_uid", bookingUID, "event_id", eventID, "error", err)
		return false
	}
	if !changed {
		r.logger.Info("webhook no-op",
			"category", domain.CategoryEvent, "booking_uid", bookingUID, "event_id", eventID, "status", status)
		return false
	}
	r.logger.Info("webhook applied",
		"category", domain.CategoryEvent, "booking_uid", bookingUID, "event_id", eventID, "status", status)
	if status == domain.StatusConfirmed {
		ownerUID, _, err := r.events.GetEntryByBookingRef(ctx, bookingUID, eventID)
		if err != nil {
			return true
		}
		if owner, err := r.events.GetOwner(ctx, ownerUID); err == nil {
			r.notifyConfirmed(ctx, owner.Contact.Email, owner.Contact.Name, domain.CategoryEvent)
		}
	}
	return true
}

// metaEventID recovers the event id from booking metadata. JSON numbers
// decode as float64; ids may also arrive as strings.
func metaEventID(metaData map[string]any) (int, bool) {
	raw, ok := metaData["eventId"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		id, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

func (r *Reconciler) notifyConfirmed(ctx context.Context, email, name string, category domain.Category) {
	if r.email == nil || email == "" {
		return
	}
	err := r.email.SendRegistrationConfirmed(ctx, &domain.RegistrationConfirmedEmailData{
		Email:    email,
		Name:     name,
		Category: category,
	})
	if err != nil {
		r.logger.Warn("confirmation email failed", "email", email, "error", err)
	}
}

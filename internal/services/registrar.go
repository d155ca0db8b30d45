package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"technika/internal/domain"
	"technika/internal/platform/metrics"
)

// RegisterInput is the category-agnostic registration input assembled by the
// per-category services from their request payloads.
type RegisterInput struct {
	Contact  domain.ContactInfo
	Meta     map[string]any
	Quantity int
}

// FreeGrantFunc decides whether a registration short-circuits to confirmed
// with no provider call. Returning an error (typically ErrForbidden) rejects
// the attempt instead of silently ignoring the claimed entitlement.
type FreeGrantFunc func(ctx context.Context, id domain.Identity, in *RegisterInput) (bool, error)

// DomainConfig parameterizes the registration state machine for one
// category. The same machine drives alumni, accommodation and the generic
// per-ticket flow; only the ticket id, store and free-path policy differ.
type DomainConfig struct {
	Name         domain.Category
	Ticket       int
	FreeGrant    FreeGrantFunc
	CallbackPath string
	Store        domain.RegistrationStore
}

// Registrar drives a category's records through
// unregistered -> pending-payment -> confirmed/failed.
type Registrar struct {
	cfg            DomainConfig
	provider       domain.BookingProvider
	paymentBaseURL string
	callbackBase   string
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewRegistrar(cfg DomainConfig, provider domain.BookingProvider, paymentBaseURL, callbackBase string, logger *slog.Logger, timeout time.Duration) *Registrar {
	return &Registrar{
		cfg:            cfg,
		provider:       provider,
		paymentBaseURL: strings.TrimSuffix(paymentBaseURL, "/") + "/",
		callbackBase:   strings.TrimSuffix(callbackBase, "/"),
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// Register is the create-or-resume entry point. A confirmed record returns
// immediately, a pending record with a cached payment URL returns that URL
// unchanged, and only a genuinely fresh attempt reaches the provider.
func (r *Registrar) Register(ctx context.Context, id domain.Identity, in *RegisterInput) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.contextTimeout)
	defer cancel()

	reg, err := r.cfg.Store.GetByOwner(ctx, id.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load registration: %w", err)
	}

	if reg != nil {
		if res, handled, err := r.resume(ctx, reg); handled || err != nil {
			return res, err
		}
		// Stale record was discarded; fall through to a fresh booking.
		reg = nil
	}

	if r.cfg.FreeGrant != nil {
		granted, err := r.cfg.FreeGrant(ctx, id, in)
		if err != nil {
			return nil, err
		}
		if granted {
			return r.persistFree(ctx, id, in)
		}
	}

	first, last := domain.SplitName(in.Contact.Name)
	payload := domain.BookingPayload{
		FirstName:   first,
		LastName:    last,
		Email:       in.Contact.Email,
		PhoneNumber: domain.NormalizePhone(in.Contact.Phone),
		Ticket:      r.cfg.Ticket,
		Quantity:    in.Quantity,
		MetaData:    in.Meta,
		CallbackURL: r.callbackURL(),
	}

	resp, err := r.provider.CreateBooking(ctx, payload)
	if err != nil {
		return nil, err
	}

	status := domain.ParseProviderStatus(resp.Booking.Status)
	if status == "" {
		status = domain.StatusPendingPayment
	}

	now := r.now()
	rec := &domain.Registration{
		OwnerUID:      id.UID,
		Contact:       in.Contact,
		Meta:          in.Meta,
		PaymentStatus: status,
		BookingRef:    resp.Booking.UID,
		PaymentURL:    resp.Payment.URLToRedirect,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.cfg.Store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}

	metrics.IncBookingCreated(string(r.cfg.Name))
	r.logger.Info("registration created",
		"category", r.cfg.Name, "uid", id.UID, "booking_ref", rec.BookingRef, "status", rec.PaymentStatus)
	return &domain.RegisterResult{Status: rec.PaymentStatus, PaymentURL: rec.PaymentURL}, nil
}

// resume handles an existing record. handled=false means the record was
// stale and has been discarded, so the caller should book afresh.
func (r *Registrar) resume(ctx context.Context, reg *domain.Registration) (*domain.RegisterResult, bool, error) {
	if reg.PaymentStatus == domain.StatusConfirmed {
		return &domain.RegisterResult{Status: domain.StatusConfirmed, Message: "already registered"}, true, nil
	}
	if reg.PaymentURL != "" {
		return &domain.RegisterResult{Status: reg.PaymentStatus, PaymentURL: reg.PaymentURL}, true, nil
	}
	if reg.BookingRef == "" {
		if err := r.cfg.Store.Delete(ctx, reg.ID); err != nil {
			return nil, false, fmt.Errorf("discard stale registration: %w", err)
		}
		return nil, false, nil
	}

	// Interrupted prior attempt: ask the provider whether the stale booking
	// still has a payment attached.
	fetched, err := r.provider.FetchBooking(ctx, reg.BookingRef)
	if err != nil || fetched.Payment.PaymentID == "" {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			r.logger.Warn("stale booking probe failed, discarding record",
				"category", r.cfg.Name, "booking_ref", reg.BookingRef, "error", err)
		}
		if err := r.cfg.Store.Delete(ctx, reg.ID); err != nil {
			return nil, false, fmt.Errorf("discard stale registration: %w", err)
		}
		return nil, false, nil
	}

	reg.PaymentURL = r.paymentBaseURL + fetched.Payment.PaymentID
	if status := domain.ParseProviderStatus(fetched.Status); status != "" {
		reg.PaymentStatus = status
	}
	reg.UpdatedAt = r.now()
	if err := r.cfg.Store.Update(ctx, reg); err != nil {
		return nil, false, fmt.Errorf("update registration: %w", err)
	}
	return &domain.RegisterResult{Status: reg.PaymentStatus, PaymentURL: reg.PaymentURL}, true, nil
}

func (r *Registrar) persistFree(ctx context.Context, id domain.Identity, in *RegisterInput) (*domain.RegisterResult, error) {
	now := r.now()
	rec := &domain.Registration{
		OwnerUID:      id.UID,
		Contact:       in.Contact,
		Meta:          in.Meta,
		PaymentStatus: domain.StatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.cfg.Store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist registration: %w", err)
	}
	r.logger.Info("free registration confirmed", "category", r.cfg.Name, "uid", id.UID)
	return &domain.RegisterResult{Status: domain.StatusConfirmed}, nil
}

func (r *Registrar) callbackURL() string {
	if r.cfg.CallbackPath == "" {
		return ""
	}
	return r.callbackBase + r.cfg.CallbackPath
}

// Store exposes the category's store for status endpoints.
func (r *Registrar) Store() domain.RegistrationStore { return r.cfg.Store }

// BitEmailGrant honors an explicit BIT-student assertion only when the
// identity's email actually belongs to the institute domain. Asserting it
// with a non-matching email is a ForbiddenError, never silently dropped.
func BitEmailGrant(emailDomain string) func(email string, asserted bool) (bool, error) {
	suffix := "@" + strings.ToLower(strings.TrimPrefix(emailDomain, "@"))
	return func(email string, asserted bool) (bool, error) {
		if !asserted {
			return false, nil
		}
		if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), suffix) {
			return false, fmt.Errorf("%w: email does not belong to %s", domain.ErrForbidden, emailDomain)
		}
		return true, nil
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"technika/internal/domain"
	"technika/internal/platform/metrics"
)

type eventService struct {
	repo           domain.EventRepository
	provider       domain.BookingProvider
	bitGrant       func(email string, asserted bool) (bool, error)
	callbackURL    string
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewEventService(
	repo domain.EventRepository,
	provider domain.BookingProvider,
	bitGrant func(email string, asserted bool) (bool, error),
	callbackURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		repo:           repo,
		provider:       provider,
		bitGrant:       bitGrant,
		callbackURL:    callbackURL,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) Book(ctx context.Context, id domain.Identity, req *domain.EventBookRequest) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	if _, err := s.repo.GetOwner(ctx, id.UID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		err = s.repo.CreateOwner(ctx, &domain.EventRegistration{
			OwnerUID: id.UID,
			Contact: domain.ContactInfo{
				Name:    req.Name,
				Email:   id.Email,
				Phone:   req.Phone,
				College: req.College,
			},
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create event registration: %w", err)
		}
	}

	entry, err := s.repo.GetEntry(ctx, id.UID, req.EventID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if entry != nil {
		if entry.PaymentStatus == domain.StatusConfirmed {
			return &domain.RegisterResult{Status: domain.StatusConfirmed, Message: "already registered"}, nil
		}
		if entry.PaymentURL != "" {
			return &domain.RegisterResult{Status: entry.PaymentStatus, PaymentURL: entry.PaymentURL}, nil
		}
	}

	// Free paths, explicit assertion first: a claimed BIT affiliation must
	// match the identity's email domain or the whole attempt is rejected.
	free := false
	if req.IsBitStudent {
		granted, err := s.bitGrant(id.Email, true)
		if err != nil {
			return nil, err
		}
		free = granted
	}
	if _, isFreeEvent := domain.FreeEventIDs[req.EventID]; isFreeEvent {
		free = true
	}
	if free {
		err := s.repo.UpsertEntry(ctx, id.UID, &domain.EventEntry{
			EventID:       req.EventID,
			Type:          req.Type,
			Members:       req.Members,
			PaymentStatus: domain.StatusConfirmed,
			UpdatedAt:     now,
		})
		if err != nil {
			return nil, fmt.Errorf("persist event entry: %w", err)
		}
		s.logger.Info("free event registration confirmed", "uid", id.UID, "event_id", req.EventID)
		return &domain.RegisterResult{Status: domain.StatusConfirmed}, nil
	}

	first, last := domain.SplitName(req.Name)
	resp, err := s.provider.CreateBooking(ctx, domain.BookingPayload{
		FirstName:   first,
		LastName:    last,
		Email:       id.Email,
		PhoneNumber: domain.NormalizePhone(req.Phone),
		Ticket:      domain.TicketEvent,
		MetaData:    map[string]any{"eventId": req.EventID},
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		return nil, err
	}

	status := domain.ParseProviderStatus(resp.Booking.Status)
	if status == "" {
		status = domain.StatusPendingPayment
	}
	err = s.repo.UpsertEntry(ctx, id.UID, &domain.EventEntry{
		EventID:       req.EventID,
		Type:          req.Type,
		Members:       req.Members,
		PaymentStatus: status,
		BookingRef:    resp.Booking.UID,
		PaymentURL:    resp.Payment.URLToRedirect,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("persist event entry: %w", err)
	}

	metrics.IncBookingCreated("event")
	s.logger.Info("event registration created",
		"uid", id.UID, "event_id", req.EventID, "booking_ref", resp.Booking.UID, "status", status)
	return &domain.RegisterResult{Status: status, PaymentURL: resp.Payment.URLToRedirect}, nil
}

func (s *eventService) Status(ctx context.Context, id domain.Identity, eventID int) (domain.PaymentStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entry, err := s.repo.GetEntry(ctx, id.UID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.StatusUnregistered, nil
		}
		return "", err
	}
	if entry.PaymentStatus.Terminal() || entry.BookingRef == "" {
		return entry.PaymentStatus, nil
	}

	fetched, err := s.provider.FetchBooking(ctx, entry.BookingRef)
	if err != nil {
		return entry.PaymentStatus, nil
	}
	status := domain.ParseProviderStatus(fetched.Status)
	if status == "" || status == entry.PaymentStatus {
		return entry.PaymentStatus, nil
	}
	if _, err := s.repo.UpdateEntryStatus(ctx, id.UID, eventID, status, s.now()); err != nil {
		s.logger.Warn("persist refreshed event status failed",
			"uid", id.UID, "event_id", eventID, "error", err)
		return entry.PaymentStatus, nil
	}
	return status, nil
}

func (s *eventService) Registered(ctx context.Context, id domain.Identity) (map[int]domain.PaymentStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.repo.GetOwner(ctx, id.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return map[int]domain.PaymentStatus{}, nil
		}
		return nil, err
	}
	out := make(map[int]domain.PaymentStatus, len(reg.Entries))
	for eventID, entry := range reg.Entries {
		out[eventID] = entry.PaymentStatus
	}
	return out, nil
}

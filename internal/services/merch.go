package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"technika/internal/domain"
	"technika/internal/platform/metrics"
)

type merchService struct {
	repo           domain.MerchRepository
	provider       domain.BookingProvider
	callbackURL    string
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewMerchService(repo domain.MerchRepository, provider domain.BookingProvider, callbackURL string, logger *slog.Logger, timeout time.Duration) domain.MerchService {
	return &merchService{
		repo:           repo,
		provider:       provider,
		callbackURL:    callbackURL,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// Order creates a booking per order. Unlike the one-record categories a user
// may hold any number of orders, so there is no already-registered check.
func (s *merchService) Order(ctx context.Context, id domain.Identity, req *domain.MerchOrderRequest) (string, *domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ticket, ok := domain.MerchTicket(req.Item.Type)
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown item type %q", domain.ErrInvalidInput, req.Item.Type)
	}

	first, last := domain.SplitName(req.Name)
	resp, err := s.provider.CreateBooking(ctx, domain.BookingPayload{
		FirstName:   first,
		LastName:    last,
		Email:       id.Email,
		PhoneNumber: domain.NormalizePhone(req.Phone),
		Ticket:      ticket,
		Quantity:    req.Item.Quantity,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		return "", nil, err
	}

	status := domain.ParseProviderStatus(resp.Booking.Status)
	if status == "" {
		status = domain.StatusPendingPayment
	}

	now := s.now()
	order := &domain.MerchOrder{
		ID:       resp.Booking.UID,
		OwnerUID: id.UID,
		Contact: domain.ContactInfo{
			Name:    req.Name,
			Email:   id.Email,
			Phone:   req.Phone,
			College: req.College,
		},
		Item:          req.Item,
		PaymentStatus: status,
		PaymentURL:    resp.Payment.URLToRedirect,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return "", nil, fmt.Errorf("persist merch order: %w", err)
	}

	metrics.IncBookingCreated("merch")
	s.logger.Info("merch order created", "uid", id.UID, "order_id", order.ID, "item", req.Item.Type, "status", status)
	return order.ID, &domain.RegisterResult{Status: status, PaymentURL: order.PaymentURL}, nil
}

func (s *merchService) Orders(ctx context.Context, id domain.Identity) ([]domain.MerchOrderSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	orders, err := s.repo.ListByOwner(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.MerchOrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, domain.MerchOrderSummary{
			ID:            o.ID,
			Item:          o.Item,
			PaymentStatus: o.PaymentStatus,
			PaymentURL:    o.PaymentURL,
		})
	}
	return summaries, nil
}

func (s *merchService) OrderStatus(ctx context.Context, id domain.Identity, orderID string) (*domain.MerchOrderStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerUID != id.UID {
		return nil, domain.ErrNotFound
	}

	out := &domain.MerchOrderStatus{
		OrderID:    order.ID,
		Status:     order.PaymentStatus,
		PaymentURL: order.PaymentURL,
	}
	if order.PaymentStatus.Terminal() {
		if fetched, err := s.provider.FetchBooking(ctx, order.ID); err == nil {
			out.Checksum = fetched.Checksum
		}
		return out, nil
	}

	fetched, err := s.provider.FetchBooking(ctx, order.ID)
	if err != nil {
		return out, nil
	}
	status := domain.ParseProviderStatus(fetched.Status)
	if status == "" || status == order.PaymentStatus {
		return out, nil
	}
	if _, err := s.repo.UpdateStatus(ctx, order.ID, status, s.now()); err != nil {
		s.logger.Warn("persist refreshed order status failed", "order_id", order.ID, "error", err)
		return out, nil
	}
	out.Status = status
	if status == domain.StatusConfirmed {
		out.Checksum = fetched.Checksum
	}
	return out, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"technika/internal/domain"
)

// TicketStoreProvider hands out a RegistrationStore scoped to one ticket id.
type TicketStoreProvider interface {
	ForTicket(ticketID int) domain.RegistrationStore
}

type ticketBookingService struct {
	registrars map[int]*Registrar
}

// NewTicketBookingService builds one registrar per allowed ticket id, all
// sharing the scoped paid-bookings store.
func NewTicketBookingService(
	stores TicketStoreProvider,
	provider domain.BookingProvider,
	paymentBaseURL, callbackBase string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.TicketBookingService {
	registrars := make(map[int]*Registrar, len(domain.AllowedTicketIDs))
	for _, ticketID := range domain.AllowedTicketIDs {
		registrars[ticketID] = NewRegistrar(DomainConfig{
			Name:         domain.Category(fmt.Sprintf("ticket-%d", ticketID)),
			Ticket:       ticketID,
			CallbackPath: "/payment/callback",
			Store:        stores.ForTicket(ticketID),
		}, provider, paymentBaseURL, callbackBase, logger, timeout)
	}
	return &ticketBookingService{registrars: registrars}
}

func (s *ticketBookingService) Book(ctx context.Context, id domain.Identity, ticketID int, req *domain.TicketBookRequest) (*domain.RegisterResult, error) {
	registrar, ok := s.registrars[ticketID]
	if !ok {
		return nil, fmt.Errorf("%w: ticket %d is not bookable", domain.ErrInvalidInput, ticketID)
	}
	return registrar.Register(ctx, id, &RegisterInput{
		Contact: domain.ContactInfo{
			Name:    req.Name,
			Email:   id.Email,
			Phone:   req.Phone,
			College: req.College,
		},
		Quantity: req.Quantity,
	})
}

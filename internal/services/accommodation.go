package services

import (
	"context"
	"errors"
	"time"

	"technika/internal/domain"
)

type accommodationService struct {
	registrar      *Registrar
	reconciler     *Reconciler
	contextTimeout time.Duration
}

func NewAccommodationService(registrar *Registrar, reconciler *Reconciler, timeout time.Duration) domain.AccommodationService {
	return &accommodationService{registrar: registrar, reconciler: reconciler, contextTimeout: timeout}
}

func (s *accommodationService) Book(ctx context.Context, id domain.Identity, req *domain.AccommodationBookRequest) (*domain.RegisterResult, error) {
	return s.registrar.Register(ctx, id, &RegisterInput{
		Contact: domain.ContactInfo{
			Name:    req.Name,
			Email:   id.Email,
			Phone:   req.Phone,
			College: req.College,
		},
	})
}

func (s *accommodationService) Status(ctx context.Context, id domain.Identity) (*domain.AccommodationStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	store := s.registrar.Store()
	reg, err := store.GetByOwner(ctx, id.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.AccommodationStatus{Status: domain.StatusUnregistered}, nil
		}
		return nil, err
	}

	status, err := s.reconciler.RefreshRegistration(ctx, domain.CategoryAccommodation, store, reg)
	if err != nil {
		return nil, err
	}
	return &domain.AccommodationStatus{
		Status:  status,
		Name:    reg.Contact.Name,
		Phone:   reg.Contact.Phone,
		College: reg.Contact.College,
	}, nil
}

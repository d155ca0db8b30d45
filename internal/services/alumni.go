package services

import (
	"context"
	"errors"
	"time"

	"technika/internal/domain"
)

type alumniService struct {
	registrar      *Registrar
	reconciler     *Reconciler
	contextTimeout time.Duration
}

func NewAlumniService(registrar *Registrar, reconciler *Reconciler, timeout time.Duration) domain.AlumniService {
	return &alumniService{registrar: registrar, reconciler: reconciler, contextTimeout: timeout}
}

func (s *alumniService) Register(ctx context.Context, id domain.Identity, req *domain.AlumniRegisterRequest) (*domain.RegisterResult, error) {
	email := req.Email
	if email == "" {
		email = id.Email
	}
	return s.registrar.Register(ctx, id, &RegisterInput{
		Contact: domain.ContactInfo{
			Name:  req.Name,
			Email: email,
			Phone: req.Phone,
		},
		Meta: map[string]any{
			"yearOfPassing": req.YearOfPassing,
			"size":          req.Size,
			"merchName":     req.MerchName,
		},
	})
}

func (s *alumniService) Status(ctx context.Context, id domain.Identity) (domain.PaymentStatus, *domain.AlumniDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	store := s.registrar.Store()
	reg, err := store.GetByOwner(ctx, id.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.StatusUnregistered, nil, nil
		}
		return "", nil, err
	}

	status, err := s.reconciler.RefreshRegistration(ctx, domain.CategoryAlumni, store, reg)
	if err != nil {
		return "", nil, err
	}

	details := &domain.AlumniDetails{Name: reg.Contact.Name}
	if v, ok := reg.Meta["merchName"].(string); ok {
		details.MerchName = v
	}
	if v, ok := reg.Meta["size"].(string); ok {
		details.Size = v
	}
	return status, details, nil
}

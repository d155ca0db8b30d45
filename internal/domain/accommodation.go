package domain

import "context"

// AccommodationBookRequest is the accommodation booking payload.
type AccommodationBookRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	College string `json:"college"`
}

// Validate implements the request validator contract.
func (r *AccommodationBookRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(r.Phone) < 10 {
		errs = append(errs, "phone must be at least 10 digits")
	}
	if r.College == "" {
		errs = append(errs, "college is required")
	}
	return errs
}

// AccommodationStatus is the status endpoint response detail.
type AccommodationStatus struct {
	Status  PaymentStatus `json:"status"`
	Name    string        `json:"name,omitempty"`
	Phone   string        `json:"phone,omitempty"`
	College string        `json:"college,omitempty"`
}

// AccommodationService drives accommodation booking and status refresh.
type AccommodationService interface {
	Book(ctx context.Context, id Identity, req *AccommodationBookRequest) (*RegisterResult, error)
	Status(ctx context.Context, id Identity) (*AccommodationStatus, error)
}

package domain

import "context"

// AlumniRegisterRequest is the alumni registration payload.
type AlumniRegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	YearOfPassing int    `json:"yearOfPassing"`
	Size          string `json:"size"`
	MerchName     string `json:"merchName,omitempty"`
}

// Validate implements the request validator contract.
func (r *AlumniRegisterRequest) Validate() []string {
	var errs []string
	if len(r.Name) < 2 {
		errs = append(errs, "name must be at least 2 characters")
	}
	if r.Email == "" {
		errs = append(errs, "email is required")
	}
	if len(r.Phone) < 10 {
		errs = append(errs, "phone must be at least 10 digits")
	}
	if r.YearOfPassing < 1950 || r.YearOfPassing > 2026 {
		errs = append(errs, "yearOfPassing must be between 1950 and 2026")
	}
	if r.Size == "" {
		errs = append(errs, "size is required")
	}
	return errs
}

// AlumniDetails is the detail block returned by the status endpoint.
type AlumniDetails struct {
	Name      string `json:"name"`
	MerchName string `json:"merchName,omitempty"`
	Size      string `json:"size,omitempty"`
}

// AlumniService drives alumni registration and pull-path reconciliation.
type AlumniService interface {
	Register(ctx context.Context, id Identity, req *AlumniRegisterRequest) (*RegisterResult, error)
	Status(ctx context.Context, id Identity) (PaymentStatus, *AlumniDetails, error)
}

package domain

import "errors"

// Sentinel errors shared across services. Controllers translate these to
// HTTP status codes; services wrap them with fmt.Errorf("%w") for context.
var (
	// ErrNotFound is returned when a record, room, or order does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request payload fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a state precondition is violated, e.g.
	// joining a room while already a member elsewhere, or a room-membership
	// parity mismatch during group registration.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when the caller is authenticated but not
	// entitled to the action, e.g. asserting BIT-student status with a
	// non-matching email, or acting on a room one does not own.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned for a missing or invalid identity
	// credential or webhook secret.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream is returned when the booking provider call failed or
	// returned unusable data. The attempt may be retried by the caller.
	ErrUpstream = errors.New("upstream provider error")
)

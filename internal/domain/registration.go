package domain

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// PaymentStatus is the provider's booking status as stored locally.
type PaymentStatus string

const (
	StatusPendingPayment PaymentStatus = "pending-payment"
	StatusConfirmed      PaymentStatus = "confirmed"
	StatusFailed         PaymentStatus = "failed"

	// StatusUnregistered is an API response value only; it is never stored.
	StatusUnregistered PaymentStatus = "unregistered"
)

// Terminal reports whether the status may no longer be overwritten by a
// provider-status update. Confirmed is terminal per booking reference.
func (s PaymentStatus) Terminal() bool { return s == StatusConfirmed }

// ParseProviderStatus maps a raw provider status string onto the local
// enum. Cancelled bookings are stored as failed. Empty input maps to
// the zero value, which callers must treat as "no change".
func ParseProviderStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		return StatusConfirmed
	case "cancelled", "failed":
		return StatusFailed
	case "pending-payment", "pending":
		return StatusPendingPayment
	case "":
		return ""
	default:
		return PaymentStatus(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// ContactInfo is the registrant contact block shared by every category.
type ContactInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	College string `json:"college,omitempty"`
}

// Registration is the generic per-category record the registration state
// machine drives through unregistered -> pending-payment -> confirmed/failed.
// Category-specific extras (year of passing, shirt size, merch item) live
// in Meta and are persisted as jsonb.
type Registration struct {
	ID            string         `json:"id"`
	OwnerUID      string         `json:"owner_uid"`
	Contact       ContactInfo    `json:"contact"`
	Meta          map[string]any `json:"meta,omitempty"`
	PaymentStatus PaymentStatus  `json:"payment_status"`
	BookingRef    string         `json:"booking_ref,omitempty"`
	PaymentURL    string         `json:"payment_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// RegistrationStore is the per-category persistence port for the generic
// state machine and the reconciliation engine.
type RegistrationStore interface {
	GetByOwner(ctx context.Context, ownerUID string) (*Registration, error)
	GetByBookingRef(ctx context.Context, bookingRef string) (*Registration, error)
	Create(ctx context.Context, reg *Registration) error
	Update(ctx context.Context, reg *Registration) error
	Delete(ctx context.Context, id string) error
	// UpdateStatusByBookingRef patches payment_status for the record holding
	// bookingRef and bumps updated_at. It must not regress a confirmed
	// status; it returns false when no row changed (unknown ref, same
	// status, or terminal state).
	UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status PaymentStatus, at time.Time) (bool, error)
}

// RegisterResult is the outcome of a registration attempt: the resulting
// status plus the payment redirect URL when payment is still owed. Free
// paths return confirmed with an empty URL.
type RegisterResult struct {
	Status     PaymentStatus `json:"status"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
	Message    string        `json:"message,omitempty"`
}

// NormalizePhone brings a phone number to an E.164-like form. Numbers that
// already carry an explicit country code ("+"-prefixed) pass through
// unchanged. Bare 10-digit numbers get the national prefix, a 12-digit
// number starting with the national calling code gets only the "+", and
// anything else is passed through as its digits.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "+") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	}
	return digits
}

// SplitName splits a full name into first and last on the first space.
// A single-word name yields an empty last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

package domain

import "context"

// BookingPayload is the provider's booking-create request body.
type BookingPayload struct {
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Email       string         `json:"email"`
	PhoneNumber string         `json:"phone_number"`
	Ticket      int            `json:"ticket"`
	Quantity    int            `json:"quantity,omitempty"`
	MetaData    map[string]any `json:"meta_data,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
}

// BulkBookingPayload wraps multiple bookings resolved as one payment.
type BulkBookingPayload struct {
	Bookings []BookingPayload `json:"bookings"`
}

// BookingResponse is the provider's booking-create response.
type BookingResponse struct {
	Booking struct {
		UID    string `json:"uid"`
		Status string `json:"status"`
	} `json:"booking"`
	Ticket struct {
		ID int `json:"id"`
	} `json:"ticket"`
	Payment struct {
		URLToRedirect string `json:"url_to_redirect"`
	} `json:"payment"`
	MetaData map[string]any `json:"meta_data,omitempty"`
}

// ChildBooking is one member booking inside a bulk booking response.
type ChildBooking struct {
	UID      string `json:"uid"`
	Status   string `json:"status"`
	MetaData struct {
		UID string `json:"uid"`
	} `json:"meta_data"`
}

// BulkBookingResponse is the provider's bulk booking-create response.
type BulkBookingResponse struct {
	Booking struct {
		UID           string         `json:"uid"`
		Status        string         `json:"status"`
		ChildBookings []ChildBooking `json:"child_bookings"`
	} `json:"booking"`
	Payment struct {
		URLToRedirect string `json:"url_to_redirect"`
	} `json:"payment"`
}

// FetchBookingResponse is the provider's booking-fetch response. Status may
// be empty; callers treat that as "no change". Checksum is present only for
// confirmed bookings and backs the QR endpoints.
type FetchBookingResponse struct {
	Status  string `json:"status"`
	Payment struct {
		PaymentID string `json:"payment_id"`
	} `json:"payment"`
	Ticket struct {
		ID int `json:"id"`
	} `json:"ticket"`
	Checksum string         `json:"checksum,omitempty"`
	MetaData map[string]any `json:"meta_data,omitempty"`
}

// BookingProvider is the external ticketing service port. All calls are
// bounded by the client's timeout; failures surface as ErrUpstream.
type BookingProvider interface {
	CreateBooking(ctx context.Context, payload BookingPayload) (*BookingResponse, error)
	CreateBulkBooking(ctx context.Context, payload BulkBookingPayload) (*BulkBookingResponse, error)
	FetchBooking(ctx context.Context, bookingUID string) (*FetchBookingResponse, error)
}

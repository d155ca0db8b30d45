package domain

import (
	"context"
	"time"
)

// EventEntry is one event's sub-registration inside a user's event record.
// Event is the one category where a single owning record fans out to many
// independent entries, one per event entered.
type EventEntry struct {
	EventID       int           `json:"event_id"`
	Type          string        `json:"type,omitempty"`
	Members       []ContactInfo `json:"members,omitempty"`
	PaymentStatus PaymentStatus `json:"status,omitempty"`
	BookingRef    string        `json:"booking_ref,omitempty"`
	PaymentURL    string        `json:"payment_url,omitempty"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EventRegistration is a user's event record with all entries.
type EventRegistration struct {
	OwnerUID  string              `json:"owner_uid"`
	Contact   ContactInfo         `json:"contact"`
	Entries   map[int]*EventEntry `json:"events,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// EventBookRequest is the event booking payload.
type EventBookRequest struct {
	EventID      int           `json:"eventId"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone"`
	College      string        `json:"college,omitempty"`
	Type         string        `json:"type,omitempty"`
	Members      []ContactInfo `json:"members,omitempty"`
	IsBitStudent bool          `json:"isBitStudent,omitempty"`
}

// Validate implements the request validator contract.
func (r *EventBookRequest) Validate() []string {
	var errs []string
	if r.EventID <= 0 {
		errs = append(errs, "eventId is required")
	}
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(r.Phone) < 10 {
		errs = append(errs, "phone must be at least 10 digits")
	}
	for _, m := range r.Members {
		if m.Name == "" || m.Email == "" {
			errs = append(errs, "each member needs a name and an email")
			break
		}
	}
	return errs
}

// EventRepository defines event registration storage. The owning record and
// its entries live in separate tables; entry lookups by booking reference
// are scoped by event id, recovered from the booking's metadata.
type EventRepository interface {
	GetOwner(ctx context.Context, ownerUID string) (*EventRegistration, error)
	CreateOwner(ctx context.Context, reg *EventRegistration) error
	GetEntry(ctx context.Context, ownerUID string, eventID int) (*EventEntry, error)
	UpsertEntry(ctx context.Context, ownerUID string, entry *EventEntry) error
	UpdateEntryStatus(ctx context.Context, ownerUID string, eventID int, status PaymentStatus, at time.Time) (bool, error)
	UpdateEntryStatusByBookingRef(ctx context.Context, bookingRef string, eventID int, status PaymentStatus, at time.Time) (bool, error)
	GetEntryByBookingRef(ctx context.Context, bookingRef string, eventID int) (ownerUID string, entry *EventEntry, err error)
}

// EventService drives per-event booking and reconciliation.
type EventService interface {
	Book(ctx context.Context, id Identity, req *EventBookRequest) (*RegisterResult, error)
	Status(ctx context.Context, id Identity, eventID int) (PaymentStatus, error)
	Registered(ctx context.Context, id Identity) (map[int]PaymentStatus, error)
}

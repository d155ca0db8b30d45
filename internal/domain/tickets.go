package domain

import "context"

// Category identifies a registration category; each one has its own
// collection (table) and route set.
type Category string

const (
	CategoryAlumni        Category = "alumni"
	CategoryDelegate      Category = "delegate"
	CategoryAccommodation Category = "accommodation"
	CategoryMerch         Category = "merch"
	CategoryEvent         Category = "event"
)

// Provider ticket ids. These are assigned by the ticketing provider per
// festival edition and referenced in booking-create payloads.
const (
	TicketAlumni                = 2391
	TicketDelegate              = 2392
	TicketDelegateComplimentary = 2393
	TicketAccommodation         = 2394
	TicketMerchTee              = 2395
	TicketMerchJacket           = 2396
	TicketMerchCombo            = 2397
	TicketEvent                 = 2398
)

// ticketCategories maps a provider ticket id onto the owning category.
// The reconciliation engine uses it to select the collection a webhook's
// booking belongs to. Unknown ids are acknowledged without an update
// (webhooks may fire for unrelated ticket types).
var ticketCategories = map[int]Category{
	TicketAlumni:                CategoryAlumni,
	TicketDelegate:              CategoryDelegate,
	TicketDelegateComplimentary: CategoryDelegate,
	TicketAccommodation:         CategoryAccommodation,
	TicketMerchTee:              CategoryMerch,
	TicketMerchJacket:           CategoryMerch,
	TicketMerchCombo:            CategoryMerch,
	TicketEvent:                 CategoryEvent,
}

// TicketCategory resolves a provider ticket id to its category.
func TicketCategory(ticketID int) (Category, bool) {
	c, ok := ticketCategories[ticketID]
	return c, ok
}

// AllowedTicketIDs lists ticket ids bookable through the generic
// /book/{ticketId} flow.
var AllowedTicketIDs = []int{
	TicketAlumni,
	TicketDelegate,
	TicketAccommodation,
	TicketMerchTee,
	TicketMerchJacket,
	TicketMerchCombo,
	TicketEvent,
}

// FreeEventIDs designates solo events with no entry fee; booking one
// short-circuits to confirmed with no provider call.
var FreeEventIDs = map[int]struct{}{
	111: {}, // kavi_sammelan
	112: {}, // debate
	120: {}, // poetry_english
	121: {}, // poetry_hindi
}

// TicketForAllowed reports whether id is in AllowedTicketIDs.
func TicketForAllowed(id int) bool {
	for _, t := range AllowedTicketIDs {
		if t == id {
			return true
		}
	}
	return false
}

// TicketBookRequest is the generic per-ticket booking payload.
type TicketBookRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	College  string `json:"college,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Validate implements the request validator contract.
func (r *TicketBookRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(r.Phone) < 10 {
		errs = append(errs, "phone must be at least 10 digits")
	}
	if r.Quantity < 1 {
		r.Quantity = 1
	}
	return errs
}

// TicketBookingService drives the generic paid-ticket flow over the allowed
// ticket id list.
type TicketBookingService interface {
	Book(ctx context.Context, id Identity, ticketID int, req *TicketBookRequest) (*RegisterResult, error)
}

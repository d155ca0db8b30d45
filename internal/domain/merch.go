package domain

import (
	"context"
	"time"
)

// MerchItem describes one ordered merchandise item.
type MerchItem struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
}

// MerchTicket resolves an item type to its provider ticket id.
func MerchTicket(itemType string) (int, bool) {
	switch itemType {
	case "tee":
		return TicketMerchTee, true
	case "jacket":
		return TicketMerchJacket, true
	case "combo":
		return TicketMerchCombo, true
	default:
		return 0, false
	}
}

// MerchOrder is one merchandise order. Orders are keyed by the provider
// booking uid, so ID doubles as the booking reference.
type MerchOrder struct {
	ID            string        `json:"id"`
	OwnerUID      string        `json:"owner_uid"`
	Contact       ContactInfo   `json:"contact"`
	Item          MerchItem     `json:"item"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentURL    string        `json:"payment_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MerchOrderRequest is the order payload.
type MerchOrderRequest struct {
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	College string    `json:"college"`
	Item    MerchItem `json:"item"`
}

// Validate implements the request validator contract.
func (r *MerchOrderRequest) Validate() []string {
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
	if _, ok := MerchTicket(r.Item.Type); !ok {
		errs = append(errs, "item.type must be one of tee, jacket, combo")
	}
	if r.Item.Quantity < 1 {
		r.Item.Quantity = 1
	}
	return errs
}

// MerchOrderSummary is the list-endpoint projection of an order.
type MerchOrderSummary struct {
	ID            string        `json:"id"`
	Item          MerchItem     `json:"item"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
}

// MerchOrderStatus is the single-order status response, carrying the
// provider checksum only once payment is confirmed.
type MerchOrderStatus struct {
	OrderID    string        `json:"orderId"`
	Status     PaymentStatus `json:"status"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
	Checksum   string        `json:"checksum,omitempty"`
}

// MerchRepository defines merchandise order storage.
type MerchRepository interface {
	Create(ctx context.Context, order *MerchOrder) error
	GetByID(ctx context.Context, id string) (*MerchOrder, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]*MerchOrder, error)
	UpdateStatus(ctx context.Context, id string, status PaymentStatus, at time.Time) (bool, error)
	// UpdateStatusByBookingRef is an alias of UpdateStatus since orders are
	// keyed by the booking uid; kept separate for the reconciliation port.
	UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status PaymentStatus, at time.Time) (bool, error)
}

// MerchService drives merchandise ordering and order status refresh.
type MerchService interface {
	Order(ctx context.Context, id Identity, req *MerchOrderRequest) (orderID string, res *RegisterResult, err error)
	Orders(ctx context.Context, id Identity) ([]MerchOrderSummary, error)
	OrderStatus(ctx context.Context, id Identity, orderID string) (*MerchOrderStatus, error)
}

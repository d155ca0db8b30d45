package domain

import (
	"context"
	"time"
)

// RoomRole is a uid's delegate-room membership state. A uid holds exactly
// one of these at a time: owner XOR member XOR none.
type RoomRole string

const (
	RoleNone   RoomRole = "none"
	RoleOwner  RoomRole = "owner"
	RoleMember RoomRole = "member"
)

// DelegateRecord is one user's delegate registration. Members is populated
// only on the owner's record and must stay consistent with the member rows
// referencing RoomID.
type DelegateRecord struct {
	OwnerUID      string                 `json:"owner_uid"`
	Contact       ContactInfo            `json:"contact"`
	Address       string                 `json:"address,omitempty"`
	Role          RoomRole               `json:"role"`
	RoomID        string                 `json:"room_id,omitempty"`
	Members       map[string]ContactInfo `json:"members,omitempty"`
	SelfBooking   bool                   `json:"self_booking"`
	PaymentStatus PaymentStatus          `json:"payment_status,omitempty"`
	BookingRef    string                 `json:"booking_ref,omitempty"`
	PaymentURL    string                 `json:"payment_url,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// DelegateStore is the delegate persistence surface. Inside InTx every
// method runs against the same transaction, so membership preconditions
// read through it remain valid for the writes that follow.
type DelegateStore interface {
	Get(ctx context.Context, uid string) (*DelegateRecord, error)
	GetRoomOwner(ctx context.Context, roomID string) (*DelegateRecord, error)
	ListMembers(ctx context.Context, roomID string) ([]*DelegateRecord, error)
	Upsert(ctx context.Context, rec *DelegateRecord) error
}

// DelegateRepository adds transactional and reconciliation entry points on
// top of DelegateStore.
type DelegateRepository interface {
	DelegateStore
	// InTx runs fn inside a serializable transaction, retrying on
	// serialization conflicts. fn must re-read and re-validate all
	// preconditions; it may run more than once.
	InTx(ctx context.Context, fn func(tx DelegateStore) error) error
	GetByBookingRef(ctx context.Context, bookingRef string) (*DelegateRecord, error)
	UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status PaymentStatus, at time.Time) (bool, error)
}

// RoomStatus is the response shape for room status queries.
type RoomStatus struct {
	Owner         ContactInfo   `json:"owner"`
	Members       []ContactInfo `json:"users"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
}

// DelegateUserStatus is the response shape for per-user delegate status.
type DelegateUserStatus struct {
	IsOwner       bool          `json:"isOwner"`
	IsMember      bool          `json:"isMember"`
	RoomID        string        `json:"roomId,omitempty"`
	SelfBooking   bool          `json:"selfBooking"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentURL    string        `json:"paymentUrl,omitempty"`
	Members       []ContactInfo `json:"users,omitempty"`
}

// DelegateService drives the delegate room sub-state-machine layered on top
// of the registration state machine.
type DelegateService interface {
	// CreateRoom is a no-op returning the existing room id when uid already
	// owns one; it rejects with ErrConflict when uid is a member elsewhere.
	CreateRoom(ctx context.Context, id Identity, contact ContactInfo) (roomID string, err error)
	// JoinRoom is idempotent for the target room and rejects joining a
	// second room, joining as an owner, or joining a confirmed room.
	JoinRoom(ctx context.Context, id Identity, roomID string, contact ContactInfo) error
	// LeaveRoom removes membership on both the member's and the owner's
	// record. Owners must DeleteRoom instead.
	LeaveRoom(ctx context.Context, id Identity) error
	// DeleteRoom cascades the room-id clear to every member.
	DeleteRoom(ctx context.Context, id Identity) error
	// RegisterSelf books a single delegate ticket outside any room.
	RegisterSelf(ctx context.Context, id Identity, contact ContactInfo, address string) (*RegisterResult, error)
	// RegisterGroup bulk-books the owner plus all members, substituting a
	// complimentary ticket for every 6th member, and fans child booking
	// statuses out to member records transactionally.
	RegisterGroup(ctx context.Context, id Identity) (*RegisterResult, error)
	UserStatus(ctx context.Context, id Identity) (*DelegateUserStatus, error)
	RoomStatus(ctx context.Context, id Identity, roomID string) (*RoomStatus, error)
	// QRChecksum returns the provider checksum once payment is confirmed.
	QRChecksum(ctx context.Context, id Identity) (string, error)
}

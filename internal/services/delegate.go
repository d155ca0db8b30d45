package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"technika/internal/domain"
	"technika/internal/platform/metrics"
)

type delegateService struct {
	repo           domain.DelegateRepository
	provider       domain.BookingProvider
	paymentBaseURL string
	callbackURL    string
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

func NewDelegateService(
	repo domain.DelegateRepository,
	provider domain.BookingProvider,
	paymentBaseURL, callbackURL string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.DelegateService {
	return &delegateService{
		repo:           repo,
		provider:       provider,
		paymentBaseURL: strings.TrimSuffix(paymentBaseURL, "/") + "/",
		callbackURL:    callbackURL,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

const roomIDLength = 10

var roomIDAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ")

func generateRoomID() (string, error) {
	b := make([]rune, roomIDLength)
	max := big.NewInt(int64(len(roomIDAlphabet)))
	for i := 0; i < roomIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = roomIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

func (s *delegateService) CreateRoom(ctx context.Context, id domain.Identity, contact domain.ContactInfo) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var roomID string
	err := s.repo.InTx(ctx, func(tx domain.DelegateStore) error {
		rec, err := tx.Get(ctx, id.UID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if rec != nil {
			switch rec.Role {
			case domain.RoleOwner:
				roomID = rec.RoomID
				return nil
			case domain.RoleMember:
				return fmt.Errorf("%w: already a member of another room", domain.ErrConflict)
			}
		}

		newID, err := generateRoomID()
		if err != nil {
			return fmt.Errorf("generate room id: %w", err)
		}
		roomID = newID

		now := s.now()
		next := &domain.DelegateRecord{
			OwnerUID:  id.UID,
			Contact:   contact,
			Role:      domain.RoleOwner,
			RoomID:    roomID,
			Members:   map[string]domain.ContactInfo{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if rec != nil {
			next.CreatedAt = rec.CreatedAt
			next.SelfBooking = rec.SelfBooking
			next.PaymentStatus = rec.PaymentStatus
			next.BookingRef = rec.BookingRef
			next.PaymentURL = rec.PaymentURL
		}
		return tx.Upsert(ctx, next)
	})
	if err != nil {
		return "", err
	}
	return roomID, nil
}

func (s *delegateService) JoinRoom(ctx context.Context, id domain.Identity, roomID string, contact domain.ContactInfo) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.repo.InTx(ctx, func(tx domain.DelegateStore) error {
		owner, err := tx.Get(ctx, id.UID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if owner != nil {
			switch owner.Role {
			case domain.RoleOwner:
				return fmt.Errorf("%w: room owners cannot join another room", domain.ErrConflict)
			case domain.RoleMember:
				if owner.RoomID == roomID {
					return nil
				}
				return fmt.Errorf("%w: already a member of another room", domain.ErrConflict)
			}
		}

		roomOwner, err := tx.GetRoomOwner(ctx, roomID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: room not found", domain.ErrNotFound)
			}
			return err
		}
		if roomOwner.PaymentStatus.Terminal() {
			return fmt.Errorf("%w: room registration is already confirmed", domain.ErrConflict)
		}

		now := s.now()
		member := &domain.DelegateRecord{
			OwnerUID:  id.UID,
			Contact:   contact,
			Role:      domain.RoleMember,
			RoomID:    roomID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if owner != nil {
			member.CreatedAt = owner.CreatedAt
			member.SelfBooking = owner.SelfBooking
			member.PaymentStatus = owner.PaymentStatus
			member.BookingRef = owner.BookingRef
			member.PaymentURL = owner.PaymentURL
		}
		if err := tx.Upsert(ctx, member); err != nil {
			return err
		}

		if roomOwner.Members == nil {
			roomOwner.Members = map[string]domain.ContactInfo{}
		}
		roomOwner.Members[id.UID] = contact
		roomOwner.UpdatedAt = now
		return tx.Upsert(ctx, roomOwner)
	})
}

func (s *delegateService) LeaveRoom(ctx context.Context, id domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.repo.InTx(ctx, func(tx domain.DelegateStore) error {
		rec, err := tx.Get(ctx, id.UID)
		if err != nil {
			return err
		}
		switch rec.Role {
		case domain.RoleOwner:
			return fmt.Errorf("%w: room owners must delete the room instead", domain.ErrConflict)
		case domain.RoleNone:
			return fmt.Errorf("%w: not a member of any room", domain.ErrNotFound)
		}
		if rec.PaymentStatus.Terminal() && !rec.SelfBooking {
			return fmt.Errorf("%w: registration through this room is already confirmed", domain.ErrConflict)
		}

		now := s.now()
		owner, err := tx.GetRoomOwner(ctx, rec.RoomID)
		if err == nil {
			delete(owner.Members, id.UID)
			owner.UpdatedAt = now
			if err := tx.Upsert(ctx, owner); err != nil {
				return err
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		rec.Role = domain.RoleNone
		rec.RoomID = ""
		rec.UpdatedAt = now
		return tx.Upsert(ctx, rec)
	})
}

func (s *delegateService) DeleteRoom(ctx context.Context, id domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.repo.InTx(ctx, func(tx domain.DelegateStore) error {
		rec, err := tx.Get(ctx, id.UID)
		if err != nil {
			return err
		}
		if rec.Role != domain.RoleOwner {
			return fmt.Errorf("%w: only the room owner may delete the room", domain.ErrForbidden)
		}
		if rec.PaymentStatus.Terminal() {
			return fmt.Errorf("%w: room registration is already confirmed", domain.ErrConflict)
		}

		now := s.now()
		members, err := tx.ListMembers(ctx, rec.RoomID)
		if err != nil {
			return err
		}
		for _, m := range members {
			m.Role = domain.RoleNone
			m.RoomID = ""
			m.UpdatedAt = now
			if err := tx.Upsert(ctx, m); err != nil {
				return err
			}
		}

		rec.Role = domain.RoleNone
		rec.RoomID = ""
		rec.Members = nil
		rec.UpdatedAt = now
		return tx.Upsert(ctx, rec)
	})
}

func (s *delegateService) RegisterSelf(ctx context.Context, id domain.Identity, contact domain.ContactInfo, address string) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.Get(ctx, id.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if rec != nil {
		if rec.PaymentStatus == domain.StatusConfirmed {
			return &domain.RegisterResult{Status: domain.StatusConfirmed, Message: "already registered"}, nil
		}
		if rec.PaymentURL != "" {
			return &domain.RegisterResult{Status: rec.PaymentStatus, PaymentURL: rec.PaymentURL}, nil
		}
	}

	first, last := domain.SplitName(contact.Name)
	resp, err := s.provider.CreateBooking(ctx, domain.BookingPayload{
		FirstName:   first,
		LastName:    last,
		Email:       contact.Email,
		PhoneNumber: domain.NormalizePhone(contact.Phone),
		Ticket:      domain.TicketDelegate,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		return nil, err
	}

	status := domain.ParseProviderStatus(resp.Booking.Status)
	if status == "" {
		status = domain.StatusPendingPayment
	}

	now := s.now()
	next := &domain.DelegateRecord{
		OwnerUID:      id.UID,
		Contact:       contact,
		Address:       address,
		Role:          domain.RoleNone,
		SelfBooking:   true,
		PaymentStatus: status,
		BookingRef:    resp.Booking.UID,
		PaymentURL:    resp.Payment.URLToRedirect,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if rec != nil {
		next.CreatedAt = rec.CreatedAt
		next.Role = rec.Role
		next.RoomID = rec.RoomID
		next.Members = rec.Members
	}
	if err := s.repo.Upsert(ctx, next); err != nil {
		return nil, fmt.Errorf("persist delegate registration: %w", err)
	}

	metrics.IncBookingCreated("delegate")
	s.logger.Info("delegate self registration created",
		"uid", id.UID, "booking_ref", next.BookingRef, "status", next.PaymentStatus)
	return &domain.RegisterResult{Status: next.PaymentStatus, PaymentURL: next.PaymentURL}, nil
}

// complimentaryInterval substitutes every 6th member's booking with a
// complimentary ticket. The owner's booking is always a regular one and
// does not count toward the interval.
const complimentaryInterval = 6

func (s *delegateService) RegisterGroup(ctx context.Context, id domain.Identity) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	owner, err := s.repo.Get(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RoleOwner {
		return nil, fmt.Errorf("%w: only the room owner may register the group", domain.ErrForbidden)
	}
	if owner.PaymentStatus == domain.StatusConfirmed {
		return &domain.RegisterResult{Status: domain.StatusConfirmed, Message: "already registered"}, nil
	}
	if owner.PaymentURL != "" {
		return &domain.RegisterResult{Status: owner.PaymentStatus, PaymentURL: owner.PaymentURL}, nil
	}

	members, err := s.repo.ListMembers(ctx, owner.RoomID)
	if err != nil {
		return nil, err
	}
	if mismatch := memberParityMismatch(owner, members); mismatch != "" {
		return nil, fmt.Errorf("%w: room membership is inconsistent (%s)", domain.ErrConflict, mismatch)
	}

	payload := domain.BulkBookingPayload{
		Bookings: make([]domain.BookingPayload, 0, len(members)+1),
	}
	ownerFirst, ownerLast := domain.SplitName(owner.Contact.Name)
	payload.Bookings = append(payload.Bookings, domain.BookingPayload{
		FirstName:   ownerFirst,
		LastName:    ownerLast,
		Email:       owner.Contact.Email,
		PhoneNumber: domain.NormalizePhone(owner.Contact.Phone),
		Ticket:      domain.TicketDelegate,
		MetaData:    map[string]any{"uid": owner.OwnerUID},
		CallbackURL: s.callbackURL,
	})
	for i, rec := range members {
		ticket := domain.TicketDelegate
		if (i+1)%complimentaryInterval == 0 {
			ticket = domain.TicketDelegateComplimentary
		}
		first, last := domain.SplitName(rec.Contact.Name)
		payload.Bookings = append(payload.Bookings, domain.BookingPayload{
			FirstName:   first,
			LastName:    last,
			Email:       rec.Contact.Email,
			PhoneNumber: domain.NormalizePhone(rec.Contact.Phone),
			Ticket:      ticket,
			MetaData:    map[string]any{"uid": rec.OwnerUID},
			CallbackURL: s.callbackURL,
		})
	}

	resp, err := s.provider.CreateBulkBooking(ctx, payload)
	if err != nil {
		return nil, err
	}

	status := domain.ParseProviderStatus(resp.Booking.Status)
	if status == "" {
		status = domain.StatusPendingPayment
	}
	paymentURL := resp.Payment.URLToRedirect

	childByUID := make(map[string]domain.ChildBooking, len(resp.Booking.ChildBookings))
	for _, child := range resp.Booking.ChildBookings {
		childByUID[child.MetaData.UID] = child
	}

	now := s.now()
	err = s.repo.InTx(ctx, func(tx domain.DelegateStore) error {
		cur, err := tx.Get(ctx, id.UID)
		if err != nil {
			return err
		}
		cur.PaymentStatus = status
		cur.BookingRef = resp.Booking.UID
		cur.PaymentURL = paymentURL
		cur.UpdatedAt = now
		if child, ok := childByUID[cur.OwnerUID]; ok && child.UID != "" {
			cur.BookingRef = child.UID
		}
		if err := tx.Upsert(ctx, cur); err != nil {
			return err
		}

		roomMembers, err := tx.ListMembers(ctx, cur.RoomID)
		if err != nil {
			return err
		}
		for _, m := range roomMembers {
			child, ok := childByUID[m.OwnerUID]
			if !ok {
				s.logger.Warn("bulk booking returned no child for member",
					"room_id", cur.RoomID, "member_uid", m.OwnerUID)
				continue
			}
			m.BookingRef = child.UID
			m.PaymentStatus = status
			if cs := domain.ParseProviderStatus(child.Status); cs != "" {
				m.PaymentStatus = cs
			}
			m.PaymentURL = paymentURL
			m.UpdatedAt = now
			if err := tx.Upsert(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist group registration: %w", err)
	}

	metrics.IncBookingCreated("delegate-group")
	s.logger.Info("group registration created",
		"room_id", owner.RoomID, "size", len(members)+1, "booking_ref", resp.Booking.UID, "status", status)
	return &domain.RegisterResult{Status: status, PaymentURL: paymentURL}, nil
}

// memberParityMismatch cross-checks the owner's member map against the
// member rows pointing at the room. Any divergence is fatal for group
// registration rather than silently repaired.
func memberParityMismatch(owner *domain.DelegateRecord, members []*domain.DelegateRecord) string {
	if len(owner.Members) != len(members) {
		return fmt.Sprintf("owner lists %d members, found %d", len(owner.Members), len(members))
	}
	for _, m := range members {
		if _, ok := owner.Members[m.OwnerUID]; !ok {
			return fmt.Sprintf("member %s missing from owner record", m.OwnerUID)
		}
	}
	return ""
}

func (s *delegateService) UserStatus(ctx context.Context, id domain.Identity) (*domain.DelegateUserStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.Get(ctx, id.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.DelegateUserStatus{PaymentStatus: domain.StatusUnregistered}, nil
		}
		return nil, err
	}

	status := rec.PaymentStatus
	if status != "" && !status.Terminal() && rec.BookingRef != "" {
		status = s.refreshDelegateStatus(ctx, rec)
	}
	if status == "" {
		status = domain.StatusUnregistered
	}

	out := &domain.DelegateUserStatus{
		IsOwner:       rec.Role == domain.RoleOwner,
		IsMember:      rec.Role == domain.RoleMember,
		RoomID:        rec.RoomID,
		SelfBooking:   rec.SelfBooking,
		PaymentStatus: status,
		PaymentURL:    rec.PaymentURL,
	}
	if rec.Role == domain.RoleOwner {
		for _, c := range rec.Members {
			out.Members = append(out.Members, c)
		}
	}
	return out, nil
}

func (s *delegateService) RoomStatus(ctx context.Context, id domain.Identity, roomID string) (*domain.RoomStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	owner, err := s.repo.GetRoomOwner(ctx, roomID)
	if err != nil {
		return nil, err
	}

	status := owner.PaymentStatus
	if status != "" && !status.Terminal() && owner.BookingRef != "" {
		status = s.refreshDelegateStatus(ctx, owner)
	}

	out := &domain.RoomStatus{
		Owner:         owner.Contact,
		Members:       make([]domain.ContactInfo, 0, len(owner.Members)),
		PaymentStatus: status,
		PaymentURL:    owner.PaymentURL,
	}
	for _, c := range owner.Members {
		out.Members = append(out.Members, c)
	}
	return out, nil
}

// refreshDelegateStatus is the pull path for a delegate record. A provider
// failure or empty status leaves the stored state authoritative.
func (s *delegateService) refreshDelegateStatus(ctx context.Context, rec *domain.DelegateRecord) domain.PaymentStatus {
	fetched, err := s.provider.FetchBooking(ctx, rec.BookingRef)
	if err != nil {
		return rec.PaymentStatus
	}
	status := domain.ParseProviderStatus(fetched.Status)
	if status == "" || status == rec.PaymentStatus {
		return rec.PaymentStatus
	}
	if _, err := s.repo.UpdateStatusByBookingRef(ctx, rec.BookingRef, status, s.now()); err != nil {
		s.logger.Warn("persist refreshed delegate status failed",
			"booking_ref", rec.BookingRef, "error", err)
		return rec.PaymentStatus
	}
	return status
}

func (s *delegateService) QRChecksum(ctx context.Context, id domain.Identity) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rec, err := s.repo.Get(ctx, id.UID)
	if err != nil {
		return "", err
	}
	if rec.BookingRef == "" {
		return "", fmt.Errorf("%w: no booking on record", domain.ErrForbidden)
	}

	fetched, err := s.provider.FetchBooking(ctx, rec.BookingRef)
	if err != nil {
		return "", err
	}
	if domain.ParseProviderStatus(fetched.Status) != domain.StatusConfirmed {
		return "", fmt.Errorf("%w: payment not confirmed", domain.ErrForbidden)
	}
	return fetched.Checksum, nil
}

package postgres

import (
	"context"
	"database/sql"
	"time"

	"technika/internal/domain"
)

// TicketBookingRepository stores ad-hoc paid registrations keyed by the
// provider ticket id. All tickets share one table; ForTicket narrows it to a
// RegistrationStore scoped to a single ticket so the generic registration
// flow can treat each ticket as its own category.
type TicketBookingRepository struct {
	DB *sql.DB
}

func NewTicketBookingRepository(db *sql.DB) *TicketBookingRepository {
	return &TicketBookingRepository{DB: db}
}

// ForTicket returns a store whose reads and writes are confined to one ticket.
func (r *TicketBookingRepository) ForTicket(ticketID int) domain.RegistrationStore {
	return &ticketScopedStore{db: r.DB, ticket: ticketID}
}

// UpdateStatusByBookingRef spans every ticket; booking refs are unique
// across the table so webhook reconciliation does not need the ticket id.
func (r *TicketBookingRepository) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE paid_bookings
		SET payment_status = $2, updated_at = $3
		WHERE booking_ref = $1
		  AND payment_status <> 'confirmed'
		  AND payment_status <> $2
	`, bookingRef, status, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByBookingRef spans every ticket, for confirmation email lookups.
func (r *TicketBookingRepository) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.Registration, error) {
	return scanRegistration(r.DB.QueryRowContext(ctx, `
		SELECT id, owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at
		FROM paid_bookings
		WHERE booking_ref = $1
	`, bookingRef))
}

type ticketScopedStore struct {
	db     *sql.DB
	ticket int
}

func (s *ticketScopedStore) GetByOwner(ctx context.Context, ownerUID string) (*domain.Registration, error) {
	return scanRegistration(s.db.QueryRowContext(ctx, `
		SELECT id, owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at
		FROM paid_bookings
		WHERE owner_uid = $1 AND ticket = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, ownerUID, s.ticket))
}

func (s *ticketScopedStore) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.Registration, error) {
	return scanRegistration(s.db.QueryRowContext(ctx, `
		SELECT id, owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at
		FROM paid_bookings
		WHERE booking_ref = $1 AND ticket = $2
	`, bookingRef, s.ticket))
}

func (s *ticketScopedStore) Create(ctx context.Context, reg *domain.Registration) error {
	meta, err := marshalMeta(reg.Meta)
	if err != nil {
		return err
	}
	return s.db.QueryRowContext(ctx, `
		INSERT INTO paid_bookings (owner_uid, ticket, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12)
		RETURNING id
	`,
		reg.OwnerUID, s.ticket, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone, reg.Contact.College,
		meta, reg.PaymentStatus, reg.BookingRef, reg.PaymentURL, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (s *ticketScopedStore) Update(ctx context.Context, reg *domain.Registration) error {
	meta, err := marshalMeta(reg.Meta)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE paid_bookings
		SET name = $2, email = $3, phone = $4, college = $5, meta = $6,
		    payment_status = $7, booking_ref = NULLIF($8, ''), payment_url = $9, updated_at = $10
		WHERE id = $1 AND ticket = $11
	`,
		reg.ID, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone, reg.Contact.College,
		meta, reg.PaymentStatus, reg.BookingRef, reg.PaymentURL, reg.UpdatedAt, s.ticket,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *ticketScopedStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM paid_bookings WHERE id = $1 AND ticket = $2`, id, s.ticket)
	return err
}

func (s *ticketScopedStore) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE paid_bookings
		SET payment_status = $2, updated_at = $3
		WHERE booking_ref = $1 AND ticket = $4
		  AND payment_status <> 'confirmed'
		  AND payment_status <> $2
	`, bookingRef, status, at, s.ticket)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"technika/internal/domain"
)

// EventRepository stores event registrations as an owner row plus one entry
// row per event entered.
type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) GetOwner(ctx context.Context, ownerUID string) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{OwnerUID: ownerUID}
	err := r.DB.QueryRowContext(ctx, `
		SELECT name, email, phone, college, created_at, updated_at
		FROM event_registrations
		WHERE owner_uid = $1
	`, ownerUID).Scan(
		&reg.Contact.Name, &reg.Contact.Email, &reg.Contact.Phone, &reg.Contact.College,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT event_id, entry_type, members, payment_status, booking_ref, payment_url, updated_at
		FROM event_entries
		WHERE owner_uid = $1
		ORDER BY event_id
	`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reg.Entries = map[int]*domain.EventEntry{}
	for rows.Next() {
		entry, err := scanEventEntry(rows)
		if err != nil {
			return nil, err
		}
		reg.Entries[entry.EventID] = entry
	}
	return reg, rows.Err()
}

func (r *EventRepository) CreateOwner(ctx context.Context, reg *domain.EventRegistration) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO event_registrations (owner_uid, name, email, phone, college, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_uid) DO UPDATE SET
			name = EXCLUDED.name, phone = EXCLUDED.phone, college = EXCLUDED.college,
			updated_at = EXCLUDED.updated_at
	`,
		reg.OwnerUID, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone, reg.Contact.College,
		reg.CreatedAt, reg.UpdatedAt,
	)
	return err
}

func scanEventEntry(row interface{ Scan(...any) error }) (*domain.EventEntry, error) {
	entry := &domain.EventEntry{}
	var members []byte
	var entryType, bookingRef, paymentURL sql.NullString
	err := row.Scan(&entry.EventID, &entryType, &members, &entry.PaymentStatus, &bookingRef, &paymentURL, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	entry.Type = entryType.String
	entry.BookingRef = bookingRef.String
	entry.PaymentURL = paymentURL.String
	if len(members) > 0 {
		if err := json.Unmarshal(members, &entry.Members); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	}
	return entry, nil
}

func (r *EventRepository) GetEntry(ctx context.Context, ownerUID string, eventID int) (*domain.EventEntry, error) {
	return scanEventEntry(r.DB.QueryRowContext(ctx, `
		SELECT event_id, entry_type, members, payment_status, booking_ref, payment_url, updated_at
		FROM event_entries
		WHERE owner_uid = $1 AND event_id = $2
	`, ownerUID, eventID))
}

func (r *EventRepository) UpsertEntry(ctx context.Context, ownerUID string, entry *domain.EventEntry) error {
	members, err := json.Marshal(entry.Members)
	if err != nil {
		return err
	}
	if entry.Members == nil {
		members = []byte(`[]`)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO event_entries (owner_uid, event_id, entry_type, members, payment_status, booking_ref, payment_url, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8)
		ON CONFLICT (owner_uid, event_id) DO UPDATE SET
			entry_type = EXCLUDED.entry_type, members = EXCLUDED.members,
			payment_status = EXCLUDED.payment_status, booking_ref = EXCLUDED.booking_ref,
			payment_url = EXCLUDED.payment_url, updated_at = EXCLUDED.updated_at
	`,
		ownerUID, entry.EventID, entry.Type, members,
		entry.PaymentStatus, entry.BookingRef, entry.PaymentURL, entry.UpdatedAt,
	)
	return err
}

func (r *EventRepository) UpdateEntryStatus(ctx context.Context, ownerUID string, eventID int, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE event_entries
		SET payment_status = $3, updated_at = $4
		WHERE owner_uid = $1 AND event_id = $2
		  AND payment_status <> 'confirmed'
		  AND payment_status <> $3
	`, ownerUID, eventID, status, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EventRepository) UpdateEntryStatusByBookingRef(ctx context.Context, bookingRef string, eventID int, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE event_entries
		SET payment_status = $3, updated_at = $4
		WHERE booking_ref = $1 AND event_id = $2
		  AND payment_status <> 'confirmed'
		  AND payment_status <> $3
	`, bookingRef, eventID, status, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *EventRepository) GetEntryByBookingRef(ctx context.Context, bookingRef string, eventID int) (string, *domain.EventEntry, error) {
	entry := &domain.EventEntry{}
	var ownerUID string
	var members []byte
	var entryType, paymentURL sql.NullString
	err := r.DB.QueryRowContext(ctx, `
		SELECT owner_uid, event_id, entry_type, members, payment_status, payment_url, updated_at
		FROM event_entries
		WHERE booking_ref = $1 AND event_id = $2
	`, bookingRef, eventID).Scan(
		&ownerUID, &entry.EventID, &entryType, &members, &entry.PaymentStatus, &paymentURL, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, domain.ErrNotFound
		}
		return "", nil, err
	}
	entry.BookingRef = bookingRef
	entry.Type = entryType.String
	entry.PaymentURL = paymentURL.String
	if len(members) > 0 {
		if err := json.Unmarshal(members, &entry.Members); err != nil {
			return "", nil, fmt.Errorf("decode members: %w", err)
		}
	}
	return ownerUID, entry, nil
}

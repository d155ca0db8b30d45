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

// registrationRepository is the shared store implementation for the
// single-record-per-user categories (alumni, accommodation). Each category
// gets its own table with the same column layout; category extras live in
// the meta jsonb column.
type registrationRepository struct {
	DB    *sql.DB
	table string
}

// NewRegistrationRepository returns a RegistrationStore over the given table.
func NewRegistrationRepository(db *sql.DB, table string) domain.RegistrationStore {
	return &registrationRepository{DB: db, table: table}
}

func marshalMeta(meta map[string]any) ([]byte, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(meta)
}

func scanRegistration(row interface{ Scan(...any) error }) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var meta []byte
	var bookingRef, paymentURL sql.NullString
	err := row.Scan(
		&reg.ID, &reg.OwnerUID,
		&reg.Contact.Name, &reg.Contact.Email, &reg.Contact.Phone, &reg.Contact.College,
		&meta, &reg.PaymentStatus, &bookingRef, &paymentURL,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	reg.BookingRef = bookingRef.String
	reg.PaymentURL = paymentURL.String
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &reg.Meta); err != nil {
			return nil, fmt.Errorf("decode meta: %w", err)
		}
	}
	return reg, nil
}

func (r *registrationRepository) GetByOwner(ctx context.Context, ownerUID string) (*domain.Registration, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at
		FROM %s
		WHERE owner_uid = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, r.table)
	return scanRegistration(r.DB.QueryRowContext(ctx, query, ownerUID))
}

func (r *registrationRepository) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.Registration, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at
		FROM %s
		WHERE booking_ref = $1
	`, r.table)
	return scanRegistration(r.DB.QueryRowContext(ctx, query, bookingRef))
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	meta, err := marshalMeta(reg.Meta)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_uid, name, email, phone, college, meta, payment_status, booking_ref, payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
		RETURNING id
	`, r.table)
	return r.DB.QueryRowContext(ctx, query,
		reg.OwnerUID, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone, reg.Contact.College,
		meta, reg.PaymentStatus, reg.BookingRef, reg.PaymentURL, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	meta, err := marshalMeta(reg.Meta)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, email = $3, phone = $4, college = $5, meta = $6,
		    payment_status = $7, booking_ref = NULLIF($8, ''), payment_url = $9, updated_at = $10
		WHERE id = $1
	`, r.table)
	res, err := r.DB.ExecContext(ctx, query,
		reg.ID, reg.Contact.Name, reg.Contact.Email, reg.Contact.Phone, reg.Contact.College,
		meta, reg.PaymentStatus, reg.BookingRef, reg.PaymentURL, reg.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *registrationRepository) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	// The confirmed guard lives in the predicate so neither reconciliation
	// path can regress a terminal status.
	query := fmt.Sprintf(`
		UPDATE %s
		SET payment_status = $2, updated_at = $3
		WHERE booking_ref = $1
		  AND payment_status <> '%s'
		  AND payment_status <> $2
	`, r.table, domain.StatusConfirmed)
	res, err := r.DB.ExecContext(ctx, query, bookingRef, status, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

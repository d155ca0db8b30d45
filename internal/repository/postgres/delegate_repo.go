package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"technika/internal/domain"
)

const serializationRetries = 3

// queryer is the subset of *sql.DB and *sql.Tx the delegate store needs, so
// the same query code serves both the plain repository and InTx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// DelegateRepository persists delegate registrations and room membership.
// The owner row carries the full member map; member rows mirror room_id and
// role so both sides of the relationship can be checked independently.
type DelegateRepository struct {
	DB *sql.DB
}

func NewDelegateRepository(db *sql.DB) *DelegateRepository {
	return &DelegateRepository{DB: db}
}

type delegateStore struct {
	q queryer
}

const delegateColumns = `owner_uid, name, email, phone, college, address, role, room_id, members, self_booking, payment_status, booking_ref, payment_url, created_at, updated_at`

func scanDelegate(row interface{ Scan(...any) error }) (*domain.DelegateRecord, error) {
	rec := &domain.DelegateRecord{}
	var members []byte
	var roomID, bookingRef, paymentURL, paymentStatus sql.NullString
	err := row.Scan(
		&rec.OwnerUID,
		&rec.Contact.Name, &rec.Contact.Email, &rec.Contact.Phone, &rec.Contact.College,
		&rec.Address, &rec.Role, &roomID, &members, &rec.SelfBooking,
		&paymentStatus, &bookingRef, &paymentURL,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.RoomID = roomID.String
	rec.PaymentStatus = domain.PaymentStatus(paymentStatus.String)
	rec.BookingRef = bookingRef.String
	rec.PaymentURL = paymentURL.String
	if len(members) > 0 {
		if err := json.Unmarshal(members, &rec.Members); err != nil {
			return nil, fmt.Errorf("decode members: %w", err)
		}
	}
	return rec, nil
}

func (s *delegateStore) Get(ctx context.Context, uid string) (*domain.DelegateRecord, error) {
	return scanDelegate(s.q.QueryRowContext(ctx, `
		SELECT `+delegateColumns+`
		FROM delegate_registrations
		WHERE owner_uid = $1
	`, uid))
}

func (s *delegateStore) GetRoomOwner(ctx context.Context, roomID string) (*domain.DelegateRecord, error) {
	return scanDelegate(s.q.QueryRowContext(ctx, `
		SELECT `+delegateColumns+`
		FROM delegate_registrations
		WHERE room_id = $1 AND role = $2
	`, roomID, domain.RoleOwner))
}

func (s *delegateStore) ListMembers(ctx context.Context, roomID string) ([]*domain.DelegateRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+delegateColumns+`
		FROM delegate_registrations
		WHERE room_id = $1 AND role = $2
		ORDER BY created_at
	`, roomID, domain.RoleMember)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*domain.DelegateRecord
	for rows.Next() {
		rec, err := scanDelegate(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, rec)
	}
	return members, rows.Err()
}

func (s *delegateStore) Upsert(ctx context.Context, rec *domain.DelegateRecord) error {
	members, err := json.Marshal(rec.Members)
	if err != nil {
		return err
	}
	if rec.Members == nil {
		members = []byte(`{}`)
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO delegate_registrations (owner_uid, name, email, phone, college, address, role, room_id, members, self_booking, payment_status, booking_ref, payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13, $14, $15)
		ON CONFLICT (owner_uid) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, college = EXCLUDED.college,
			address = EXCLUDED.address, role = EXCLUDED.role, room_id = EXCLUDED.room_id,
			members = EXCLUDED.members, self_booking = EXCLUDED.self_booking,
			payment_status = EXCLUDED.payment_status, booking_ref = EXCLUDED.booking_ref,
			payment_url = EXCLUDED.payment_url, updated_at = EXCLUDED.updated_at
	`,
		rec.OwnerUID, rec.Contact.Name, rec.Contact.Email, rec.Contact.Phone, rec.Contact.College,
		rec.Address, rec.Role, rec.RoomID, members, rec.SelfBooking,
		string(rec.PaymentStatus), rec.BookingRef, rec.PaymentURL, rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

func (r *DelegateRepository) Get(ctx context.Context, uid string) (*domain.DelegateRecord, error) {
	return (&delegateStore{q: r.DB}).Get(ctx, uid)
}

func (r *DelegateRepository) GetRoomOwner(ctx context.Context, roomID string) (*domain.DelegateRecord, error) {
	return (&delegateStore{q: r.DB}).GetRoomOwner(ctx, roomID)
}

func (r *DelegateRepository) ListMembers(ctx context.Context, roomID string) ([]*domain.DelegateRecord, error) {
	return (&delegateStore{q: r.DB}).ListMembers(ctx, roomID)
}

func (r *DelegateRepository) Upsert(ctx context.Context, rec *domain.DelegateRecord) error {
	return (&delegateStore{q: r.DB}).Upsert(ctx, rec)
}

// InTx runs fn inside a serializable transaction, retrying on serialization
// conflicts (40001). fn may run more than once and must re-read its
// preconditions through the store it receives.
func (r *DelegateRepository) InTx(ctx context.Context, fn func(tx domain.DelegateStore) error) error {
	var err error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		err = r.runTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (r *DelegateRepository) runTx(ctx context.Context, fn func(tx domain.DelegateStore) error) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(&delegateStore{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

func (r *DelegateRepository) GetByBookingRef(ctx context.Context, bookingRef string) (*domain.DelegateRecord, error) {
	return scanDelegate(r.DB.QueryRowContext(ctx, `
		SELECT `+delegateColumns+`
		FROM delegate_registrations
		WHERE booking_ref = $1
	`, bookingRef))
}

func (r *DelegateRepository) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE delegate_registrations
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

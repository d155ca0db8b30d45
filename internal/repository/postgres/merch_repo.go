package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"technika/internal/domain"
)

// MerchRepository stores merchandise orders keyed by the provider booking uid.
type MerchRepository struct {
	DB *sql.DB
}

func NewMerchRepository(db *sql.DB) *MerchRepository {
	return &MerchRepository{DB: db}
}

func scanMerchOrder(row interface{ Scan(...any) error }) (*domain.MerchOrder, error) {
	order := &domain.MerchOrder{}
	var size, paymentURL sql.NullString
	err := row.Scan(
		&order.ID, &order.OwnerUID,
		&order.Contact.Name, &order.Contact.Email, &order.Contact.Phone, &order.Contact.College,
		&order.Item.Type, &order.Item.Quantity, &size,
		&order.PaymentStatus, &paymentURL,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	order.Item.Size = size.String
	order.PaymentURL = paymentURL.String
	return order, nil
}

func (r *MerchRepository) Create(ctx context.Context, order *domain.MerchOrder) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO merch_orders (id, owner_uid, name, email, phone, college, item_type, quantity, size, payment_status, payment_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13)
	`,
		order.ID, order.OwnerUID,
		order.Contact.Name, order.Contact.Email, order.Contact.Phone, order.Contact.College,
		order.Item.Type, order.Item.Quantity, order.Item.Size,
		order.PaymentStatus, order.PaymentURL, order.CreatedAt, order.UpdatedAt,
	)
	return err
}

func (r *MerchRepository) GetByID(ctx context.Context, id string) (*domain.MerchOrder, error) {
	return scanMerchOrder(r.DB.QueryRowContext(ctx, `
		SELECT id, owner_uid, name, email, phone, college, item_type, quantity, size, payment_status, payment_url, created_at, updated_at
		FROM merch_orders
		WHERE id = $1
	`, id))
}

func (r *MerchRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*domain.MerchOrder, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, owner_uid, name, email, phone, college, item_type, quantity, size, payment_status, payment_url, created_at, updated_at
		FROM merch_orders
		WHERE owner_uid = $1
		ORDER BY created_at DESC
	`, ownerUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.MerchOrder
	for rows.Next() {
		order, err := scanMerchOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *MerchRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE merch_orders
		SET payment_status = $2, updated_at = $3
		WHERE id = $1
		  AND payment_status <> 'confirmed'
		  AND payment_status <> $2
	`, id, status, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MerchRepository) UpdateStatusByBookingRef(ctx context.Context, bookingRef string, status domain.PaymentStatus, at time.Time) (bool, error) {
	return r.UpdateStatus(ctx, bookingRef, status, at)
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"service-shop-delivery/internal/domain"
)

const orderColumns = `id, status, customer_id, courier_id, created_at, updated_at`

// OrderRepo represents the order repository.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status int16
	)
	if err := row.Scan(&o.ID, &status, &o.CustomerID, &o.CourierID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// Get - returns order by its ID or nil when absent.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}
	return o, nil
}

// ApproveIfPaid atomically moves an order from payment-confirmed to approved
// and assigns the courier. It returns nil when the order is absent or not in
// the payment-confirmed status.
func (r *OrderRepo) ApproveIfPaid(ctx context.Context, id, courierID string) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
        UPDATE orders
        SET status = $3, courier_id = $2, updated_at = now()
        WHERE id = $1 AND status = $4
        RETURNING `+orderColumns,
		id, courierID, int16(domain.StatusApproved), int16(domain.StatusPaymentConfirmed)))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("approve order %q: %w", id, err)
	}
	return o, nil
}

// UpsertIntake inserts or advances an order coming from the ordering
// subsystem. Status only moves forward and rows already approved are left
// alone. It reports whether a row was written.
func (r *OrderRepo) UpsertIntake(ctx context.Context, o *domain.Order) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        INSERT INTO orders (id, status, customer_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
        SET status = EXCLUDED.status, updated_at = now()
        WHERE orders.status < EXCLUDED.status AND orders.status < $5
    `, o.ID, int16(o.Status), o.CustomerID, o.CreatedAt, int16(domain.StatusApproved))
	if err != nil {
		return false, fmt.Errorf("upsert order %q: %w", o.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

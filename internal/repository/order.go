package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/order"
)

const (
	orderColumns = `id, owner_id, items, shipping_info, payment_info, applied_promotion,
		subtotal, discount, shipping, tax, total, status, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	listOrdersByOwnerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE owner_id = $1 ORDER BY created_at DESC`

	getOrderByOwnerAndIDSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE owner_id = $1 AND id = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Item,
// shipping, and payment snapshots are serialized to JSONB columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}
	shippingJSON, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return fmt.Errorf("marshaling shipping info: %w", err)
	}
	paymentJSON, err := json.Marshal(o.PaymentInfo)
	if err != nil {
		return fmt.Errorf("marshaling payment info: %w", err)
	}

	var promoJSON []byte
	if o.AppliedPromotion != nil {
		promoJSON, err = json.Marshal(o.AppliedPromotion)
		if err != nil {
			return fmt.Errorf("marshaling applied promotion: %w", err)
		}
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.OwnerID, itemsJSON, shippingJSON, paymentJSON, promoJSON,
		o.Subtotal, o.Discount, o.Shipping, o.Tax, o.Total,
		o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for owner %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByOwnerAndID returns one order scoped to its owner.
func (r *OrderRepository) GetByOwnerAndID(ctx context.Context, ownerID, orderID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByOwnerAndIDSQL, ownerID, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		itemsJSON    []byte
		shippingJSON []byte
		paymentJSON  []byte
		promoJSON    []byte
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &itemsJSON, &shippingJSON, &paymentJSON, &promoJSON,
		&o.Subtotal, &o.Discount, &o.Shipping, &o.Tax, &o.Total,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(shippingJSON, &o.ShippingInfo); err != nil {
		return o, fmt.Errorf("unmarshaling shipping info: %w", err)
	}
	if err := json.Unmarshal(paymentJSON, &o.PaymentInfo); err != nil {
		return o, fmt.Errorf("unmarshaling payment info: %w", err)
	}
	if len(promoJSON) > 0 {
		o.AppliedPromotion = &cart.AppliedPromotion{}
		if err := json.Unmarshal(promoJSON, o.AppliedPromotion); err != nil {
			return o, fmt.Errorf("unmarshaling applied promotion: %w", err)
		}
	}
	return o, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novamart/storefront/internal/domain/cart"
)

const (
	getCartByOwnerSQL = `SELECT owner_id, items, applied_promotion, subtotal, discount, total, total_items, version
		FROM carts WHERE owner_id = $1`

	insertCartSQL = `INSERT INTO carts (owner_id, items, applied_promotion, subtotal, discount, total, total_items, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)`

	updateCartSQL = `UPDATE carts SET
		items = $2, applied_promotion = $3, subtotal = $4, discount = $5,
		total = $6, total_items = $7, version = version + 1, updated_at = now()
		WHERE owner_id = $1 AND version = $8`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. One row per
// owner; line items and the applied promotion live in JSONB columns, and the
// version column carries the optimistic-concurrency token.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByOwner fetches the persisted cart for an owner.
func (r *CartRepository) GetByOwner(ctx context.Context, ownerID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartByOwnerSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for owner %q: %w", ownerID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for owner %q: %w", ownerID, err)
	}
	return &c, nil
}

// Save persists the cart with a compare-and-set on its version. Version zero
// inserts; a concurrent insert for the same owner surfaces as a primary-key
// violation, which maps to cart.ErrVersionConflict just like a stale update.
// On success the cart's Version is advanced to the stored value.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("marshaling cart items: %w", err)
	}

	var promoJSON []byte
	if c.AppliedPromotion != nil {
		promoJSON, err = json.Marshal(c.AppliedPromotion)
		if err != nil {
			return fmt.Errorf("marshaling applied promotion: %w", err)
		}
	}

	if c.Version == 0 {
		_, err := r.pool.Exec(ctx, insertCartSQL,
			c.OwnerID, itemsJSON, promoJSON,
			c.Subtotal, c.Discount, c.Total, c.TotalItems,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return cart.ErrVersionConflict
			}
			return fmt.Errorf("inserting cart for owner %q: %w", c.OwnerID, err)
		}
		c.Version = 1
		return nil
	}

	tag, err := r.pool.Exec(ctx, updateCartSQL,
		c.OwnerID, itemsJSON, promoJSON,
		c.Subtotal, c.Discount, c.Total, c.TotalItems,
		c.Version,
	)
	if err != nil {
		return fmt.Errorf("updating cart for owner %q: %w", c.OwnerID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrVersionConflict
	}
	c.Version++
	return nil
}

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var (
		c         cart.Cart
		itemsJSON []byte
		promoJSON []byte
	)
	err := row.Scan(
		&c.OwnerID, &itemsJSON, &promoJSON,
		&c.Subtotal, &c.Discount, &c.Total, &c.TotalItems, &c.Version,
	)
	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return c, fmt.Errorf("unmarshaling cart items: %w", err)
	}
	if len(promoJSON) > 0 {
		c.AppliedPromotion = &cart.AppliedPromotion{}
		if err := json.Unmarshal(promoJSON, c.AppliedPromotion); err != nil {
			return c, fmt.Errorf("unmarshaling applied promotion: %w", err)
		}
	}
	return c, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/promotion"
)

const (
	promotionColumns = `id, code, title, description, discount_type, discount_value,
		minimum_purchase, valid_until, applies_to, category_name, product_ids`

	listPromotionsSQL = `SELECT ` + promotionColumns + ` FROM promotions ORDER BY valid_until`

	listPromotionsByTypeSQL = `SELECT ` + promotionColumns + ` FROM promotions
		WHERE discount_type = $1 ORDER BY valid_until`

	listActivePromotionsSQL = `SELECT ` + promotionColumns + ` FROM promotions
		WHERE valid_until > $1 ORDER BY valid_until`

	getPromotionByIDSQL = `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	findPromotionByCodeSQL = `SELECT ` + promotionColumns + ` FROM promotions WHERE UPPER(code) = UPPER($1)`

	createPromotionSQL = `INSERT INTO promotions (` + promotionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	updatePromotionSQL = `UPDATE promotions SET
		code = $2, title = $3, description = $4, discount_type = $5, discount_value = $6,
		minimum_purchase = $7, valid_until = $8, applies_to = $9, category_name = $10, product_ids = $11
		WHERE id = $1`

	deletePromotionSQL = `DELETE FROM promotions WHERE id = $1`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// List returns all promotions ordered by expiry.
func (r *PromotionRepository) List(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// ListByType returns promotions of one discount type ordered by expiry.
func (r *PromotionRepository) ListByType(ctx context.Context, discountType promotion.DiscountType) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsByTypeSQL, string(discountType))
	if err != nil {
		return nil, fmt.Errorf("listing promotions by type %q: %w", discountType, err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// ListActive returns promotions whose expiry is strictly after now.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, now)
	if err != nil {
		return nil, fmt.Errorf("listing active promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// GetByID returns a single promotion by its identifier.
func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}
	return &p, nil
}

// FindByCode returns the promotion matching the code, case-insensitively.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, findPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("finding promotion by code: %w", err)
	}
	return &p, nil
}

// Create inserts a new promotion. Returns promotion.ErrDuplicateCode when the code is
// already taken.
func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	_, err := r.pool.Exec(ctx, createPromotionSQL,
		p.ID, p.Code, p.Title, p.Description, string(p.DiscountType),
		toNullDecimal(p.DiscountValue), toNullDecimal(p.MinimumPurchase),
		p.ValidUntil, string(p.AppliesTo), p.CategoryName, p.ProductIDs,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return promotion.ErrDuplicateCode
		}
		return fmt.Errorf("creating promotion %q: %w", p.ID, err)
	}
	return nil
}

// Update overwrites an existing promotion. Returns promotion.ErrNotFound when
// no row matches and promotion.ErrDuplicateCode when the new code collides.
func (r *PromotionRepository) Update(ctx context.Context, p *promotion.Promotion) error {
	tag, err := r.pool.Exec(ctx, updatePromotionSQL,
		p.ID, p.Code, p.Title, p.Description, string(p.DiscountType),
		toNullDecimal(p.DiscountValue), toNullDecimal(p.MinimumPurchase),
		p.ValidUntil, string(p.AppliesTo), p.CategoryName, p.ProductIDs,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return promotion.ErrDuplicateCode
		}
		return fmt.Errorf("updating promotion %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

// Delete removes a promotion. Returns promotion.ErrNotFound when no row matches.
func (r *PromotionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePromotionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting promotion %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p               promotion.Promotion
		discountValue   decimal.NullDecimal
		minimumPurchase decimal.NullDecimal
		discountType    string
		appliesTo       string
	)
	err := row.Scan(
		&p.ID, &p.Code, &p.Title, &p.Description, &discountType, &discountValue,
		&minimumPurchase, &p.ValidUntil, &appliesTo, &p.CategoryName, &p.ProductIDs,
	)
	p.DiscountType = promotion.DiscountType(discountType)
	p.AppliesTo = promotion.AppliesTo(appliesTo)
	p.DiscountValue = fromNullDecimal(discountValue)
	p.MinimumPurchase = fromNullDecimal(minimumPurchase)
	return p, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

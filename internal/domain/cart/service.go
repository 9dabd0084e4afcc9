package cart

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

// maxWriteAttempts bounds the read-modify-write retry loop when a save loses
// the version race to a concurrent writer for the same owner.
const maxWriteAttempts = 3

// Service owns cart state for all owners. Every mutation is a request-scoped
// read-modify-write against the repository: read the cart, apply the change
// in memory, recompute the derived totals, and persist once. Reads recompute
// too, so totals always track the live promotion record.
type Service struct {
	carts      Repository
	products   product.Repository
	promotions promotion.Repository
	validator  promotion.Validator
	now        func() time.Time
}

// NewService creates a cart Service with the required collaborators.
func NewService(
	carts Repository,
	products product.Repository,
	promotions promotion.Repository,
	validator promotion.Validator,
) *Service {
	return &Service{
		carts:      carts,
		products:   products,
		promotions: promotions,
		validator:  validator,
		now:        time.Now,
	}
}

// Get returns the owner's cart with freshly derived totals, constructing an
// empty cart when none is persisted. A new cart is not persisted until its
// first mutation, but a persisted cart whose stored totals have drifted from
// the recomputed ones (expired promotion, edited rules) is written back to
// keep the store consistent.
func (s *Service) Get(ctx context.Context, ownerID string) (*Cart, error) {
	var lastErr error
	for range maxWriteAttempts {
		c, drifted, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if !drifted {
			return c, nil
		}

		if err := s.carts.Save(ctx, c); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, errors.Wrap(err, "write back cart totals")
		}
		return c, nil
	}
	return nil, lastErr
}

// AddItem adds quantity units of a product to the owner's cart, merging into
// an existing line item for the same product. The product's current effective
// price and image are snapshotted into the line; later product edits do not
// touch it. Quantities below one are treated as one.
func (s *Service) AddItem(ctx context.Context, ownerID, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(c *Cart) error {
		if i := c.findItem(productID); i >= 0 {
			c.Items[i].Quantity += quantity
			return nil
		}
		c.Items = append(c.Items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.EffectivePrice(),
			Image:     p.Image,
			Quantity:  quantity,
		})
		return nil
	})
}

// UpdateQuantity sets a line item's quantity verbatim. A quantity of zero or
// less removes the line. Returns ErrItemNotFound when the item is absent.
func (s *Service) UpdateQuantity(ctx context.Context, ownerID, itemID string, quantity int) (*Cart, error) {
	return s.mutate(ctx, ownerID, func(c *Cart) error {
		i := c.findItem(itemID)
		if i < 0 {
			return ErrItemNotFound
		}
		if quantity <= 0 {
			c.Items = slices.Delete(c.Items, i, i+1)
			return nil
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem deletes a line item from the cart. It reports false, leaving the
// cart untouched, when no such item exists.
func (s *Service) RemoveItem(ctx context.Context, ownerID, itemID string) (bool, error) {
	_, err := s.mutate(ctx, ownerID, func(c *Cart) error {
		i := c.findItem(itemID)
		if i < 0 {
			return ErrItemNotFound
		}
		c.Items = slices.Delete(c.Items, i, i+1)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Clear empties the cart's items and promotion, leaving all-zero totals.
func (s *Service) Clear(ctx context.Context, ownerID string) error {
	_, err := s.mutate(ctx, ownerID, func(c *Cart) error {
		c.Items = nil
		c.AppliedPromotion = nil
		return nil
	})
	return err
}

// ApplyPromotion validates the code and attaches the promotion reference to
// the cart. A failed validation or unmet minimum purchase leaves the cart
// unchanged: promotion.ErrInvalidCode, promotion.ErrExpired, or a
// *MinimumPurchaseError is returned instead.
func (s *Service) ApplyPromotion(ctx context.Context, ownerID, code string) (*Cart, error) {
	p, err := s.validator.ValidateCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(c *Cart) error {
		if p.MinimumPurchase != nil && c.Subtotal.LessThan(*p.MinimumPurchase) {
			return &MinimumPurchaseError{Minimum: *p.MinimumPurchase}
		}
		c.AppliedPromotion = &AppliedPromotion{
			PromotionID: p.ID,
			Code:        p.Code,
			Title:       p.Title,
		}
		return nil
	})
}

// RemovePromotion detaches the applied promotion; the discount reverts to
// zero on the recompute.
func (s *Service) RemovePromotion(ctx context.Context, ownerID string) (*Cart, error) {
	return s.mutate(ctx, ownerID, func(c *Cart) error {
		c.AppliedPromotion = nil
		return nil
	})
}

// load fetches the owner's cart (or constructs an empty one) and recomputes
// its derived totals. It reports whether a persisted cart's stored totals
// differ from the recomputed ones.
func (s *Service) load(ctx context.Context, ownerID string) (*Cart, bool, error) {
	c, err := s.carts.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c = NewCart(ownerID)
			return c, false, s.recompute(ctx, c)
		}
		return nil, false, errors.Wrap(err, "fetch cart")
	}

	prevSubtotal, prevDiscount, prevTotal, prevItems := c.Subtotal, c.Discount, c.Total, c.TotalItems
	if err := s.recompute(ctx, c); err != nil {
		return nil, false, err
	}

	drifted := !c.Subtotal.Equal(prevSubtotal) ||
		!c.Discount.Equal(prevDiscount) ||
		!c.Total.Equal(prevTotal) ||
		c.TotalItems != prevItems
	return c, drifted, nil
}

// mutate runs the read-modify-write cycle: load and recompute, apply fn,
// recompute again, persist. The whole cycle is retried on a version conflict
// so a lost race never silently discards either writer's change. An error
// from fn aborts before any write.
func (s *Service) mutate(ctx context.Context, ownerID string, fn func(*Cart) error) (*Cart, error) {
	var lastErr error
	for range maxWriteAttempts {
		c, _, err := s.load(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		if err := fn(c); err != nil {
			return nil, err
		}
		if err := s.recompute(ctx, c); err != nil {
			return nil, err
		}

		if err := s.carts.Save(ctx, c); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return nil, errors.Wrap(err, "save cart")
		}
		return c, nil
	}
	return nil, lastErr
}

// recompute derives subtotal, discount, total, and item count from the line
// items and a fresh read of the applied promotion. A promotion that has been
// deleted or has expired since application contributes nothing; the reference
// itself is kept, matching its pointer semantics.
func (s *Service) recompute(ctx context.Context, c *Cart) error {
	subtotal := decimal.Zero
	count := 0
	for _, it := range c.Items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
		count += it.Quantity
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	if c.AppliedPromotion != nil {
		p, err := s.promotions.GetByID(ctx, c.AppliedPromotion.PromotionID)
		switch {
		case errors.Is(err, promotion.ErrNotFound):
			// Deleted after application: the discount silently stops.
		case err != nil:
			return errors.Wrap(err, "fetch applied promotion")
		case p.IsValid(s.now()):
			discount = p.Discount(subtotal)
		}
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	c.Subtotal = subtotal
	c.Discount = discount
	c.Total = total.Round(2)
	c.TotalItems = count
	return nil
}

package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/cart"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

var (
	freeShippingThreshold = decimal.NewFromInt(50)
	shippingFee           = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.07")
)

// Totals is the order-level cost breakdown derived from a finalized cart.
type Totals struct {
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeOrderTotals derives shipping, tax, and the final order total from a
// cart snapshot. Shipping is free at a subtotal of 50 or more, otherwise a
// flat carrier fee. Tax is a flat 7% of the post-discount cart total, not the
// subtotal. Fails with ErrEmptyCart when the cart holds no items.
func ComputeOrderTotals(c *cart.Cart) (Totals, error) {
	if len(c.Items) == 0 {
		return Totals{}, ErrEmptyCart
	}

	shipping := shippingFee
	if c.Subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := c.Total.Mul(taxRate).Round(2)

	return Totals{
		Shipping: shipping,
		Tax:      tax,
		Total:    c.Total.Add(shipping).Add(tax).Round(2),
	}, nil
}

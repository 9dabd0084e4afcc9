package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no cart is persisted for an owner.
	ErrNotFound = errors.New("cart not found")
	// ErrItemNotFound is returned when a line item is missing from the cart.
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrVersionConflict is returned when a write loses a concurrent
	// read-modify-write race. Callers retry with a fresh read.
	ErrVersionConflict = errors.New("cart version conflict")
)

// MinimumPurchaseError indicates a promotion's minimum purchase requirement
// exceeds the current cart subtotal.
type MinimumPurchaseError struct {
	Minimum decimal.Decimal
}

func (e *MinimumPurchaseError) Error() string {
	return fmt.Sprintf("This promotion requires a minimum purchase of $%s", e.Minimum)
}

// LineItem is one product entry in a cart. Name, unit price, and image are
// snapshotted at add time; later product edits do not alter existing lines.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// AppliedPromotion is a reference from a cart to a promotion record, not a
// copy of its rules. The rules are re-fetched on every totals computation, so
// a promotion edited or expired after application stops discounting on the
// next read.
type AppliedPromotion struct {
	PromotionID string `json:"promotionId"`
	Code        string `json:"code"`
	Title       string `json:"title"`
}

// Cart holds an owner's line items, the applied promotion reference, and the
// derived totals. Subtotal, Discount, Total, and TotalItems are never set
// directly; they are recomputed from Items and the live promotion record
// after every mutation and on every read.
type Cart struct {
	OwnerID          string
	Items            []LineItem
	AppliedPromotion *AppliedPromotion
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	Total            decimal.Decimal
	TotalItems       int

	// Version is the optimistic-concurrency token. Zero means the cart has
	// never been persisted; the store rejects writes whose base version is
	// stale with ErrVersionConflict.
	Version int64
}

// NewCart constructs an empty, unpersisted cart for the given owner.
func NewCart(ownerID string) *Cart {
	return &Cart{
		OwnerID:  ownerID,
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// findItem returns the index of the line item for productID, or -1.
func (c *Cart) findItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Repository defines persistence operations for carts, keyed by owner.
type Repository interface {
	// GetByOwner fetches the persisted cart for an owner.
	// Returns ErrNotFound when none exists.
	GetByOwner(ctx context.Context, ownerID string) (*Cart, error)

	// Save persists the cart with a compare-and-set on Version: version zero
	// inserts, any other version updates the row only if the stored version
	// still matches. On success the cart's Version is advanced. Returns
	// ErrVersionConflict when the base version is stale.
	Save(ctx context.Context, c *Cart) error
}

package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promotion discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountBundle marks bundle offers. Bundles communicate value through
	// bundled items rather than a subtractable amount, so their computed
	// discount is always zero.
	DiscountBundle DiscountType = "bundle"
)

// AppliesTo enumerates the scopes a promotion can target.
type AppliesTo string

const (
	AppliesToAll      AppliesTo = "all"
	AppliesToCategory AppliesTo = "category"
	AppliesToProducts AppliesTo = "products"
	AppliesToBundles  AppliesTo = "bundles"
)

var (
	// ErrNotFound is returned when a promotion does not exist.
	ErrNotFound = errors.New("promotion not found")
	// ErrInvalidCode is returned when no promotion matches a given code.
	ErrInvalidCode = errors.New("Invalid promotion code")
	// ErrExpired is returned when a promotion's valid-until instant has passed.
	ErrExpired = errors.New("Promotion has expired")
	// ErrDuplicateCode is returned when a create or update collides with an
	// existing code. Codes are unique case-insensitively.
	ErrDuplicateCode = errors.New("promotion code already exists")
)

// Promotion describes a discount offer. It is immutable from the cart's
// perspective: the cart stores only a reference and re-fetches the record on
// every evaluation.
type Promotion struct {
	ID              string
	Code            string
	Title           string
	Description     string
	DiscountType    DiscountType
	DiscountValue   *decimal.Decimal
	MinimumPurchase *decimal.Decimal
	ValidUntil      time.Time
	AppliesTo       AppliesTo
	CategoryName    string
	ProductIDs      []string
}

var hundred = decimal.NewFromInt(100)

// IsValid reports whether the promotion is usable at the given instant.
// Validity ends exactly at ValidUntil; there is no grace period.
func (p *Promotion) IsValid(now time.Time) bool {
	return p.ValidUntil.After(now)
}

// Discount computes the discount amount this promotion grants for the given
// subtotal. A promotion whose minimum purchase is not met grants nothing,
// even when applied to the cart. Fixed discounts never exceed the subtotal.
func (p *Promotion) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if p.MinimumPurchase != nil && subtotal.LessThan(*p.MinimumPurchase) {
		return decimal.Zero
	}

	switch p.DiscountType {
	case DiscountPercentage:
		if p.DiscountValue == nil {
			return decimal.Zero
		}
		return subtotal.Mul(*p.DiscountValue).Div(hundred).Round(2)
	case DiscountFixed:
		if p.DiscountValue == nil {
			return decimal.Zero
		}
		return decimal.Min(*p.DiscountValue, subtotal).Round(2)
	default:
		// Bundle promotions carry no subtractable amount.
		return decimal.Zero
	}
}

// Repository defines persistence operations for promotions.
type Repository interface {
	List(ctx context.Context) ([]Promotion, error)
	ListByType(ctx context.Context, discountType DiscountType) ([]Promotion, error)
	ListActive(ctx context.Context, now time.Time) ([]Promotion, error)
	GetByID(ctx context.Context, id string) (*Promotion, error)
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	Create(ctx context.Context, p *Promotion) error
	Update(ctx context.Context, p *Promotion) error
	Delete(ctx context.Context, id string) error
}

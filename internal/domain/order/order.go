package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/cart"
)

// ErrNotFound is returned when a requested order does not exist for an owner.
var ErrNotFound = errors.New("order not found")

// Status values an order moves through. Only StatusProcessing is assigned by
// this service; later transitions belong to order management.
const (
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// PaymentInfo is the redacted payment record stored on an order. CardNumber
// holds only the masked form; the full number and CVC are never persisted.
type PaymentInfo struct {
	CardHolder string `json:"cardHolder,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
}

// Order is an immutable snapshot produced at checkout: items are copied by
// value, the promotion reference is frozen, and the totals breakdown is
// embedded. Subsequent cart mutations or promotion edits do not affect it.
type Order struct {
	ID               string
	OwnerID          string
	Items            []cart.LineItem
	ShippingInfo     ShippingInfo
	PaymentInfo      PaymentInfo
	AppliedPromotion *cart.AppliedPromotion
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	Shipping         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MaskCardNumber reduces a card number to its masked form,
// xxxx-xxxx-xxxx-NNNN, keeping only the last four digits. Separators in the
// input are ignored. Inputs shorter than four digits yield an empty string.
func MaskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return ""
	}
	return "xxxx-xxxx-xxxx-" + digits[len(digits)-4:]
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// ListByOwner returns the owner's orders, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	// GetByOwnerAndID returns one order scoped to its owner.
	// Returns ErrNotFound when absent.
	GetByOwnerAndID(ctx context.Context, ownerID, orderID string) (*Order, error)
}

package checkout

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/order"
)

// PaymentDetails is the raw payment input accepted at checkout. It exists
// only in memory: the card number is masked and the CVC discarded before
// anything is persisted.
type PaymentDetails struct {
	CardHolder string
	CardNumber string
	Expiry     string
	CVC        string
}

// Service turns a finalized cart into a persisted order.
type Service struct {
	carts  *cart.Service
	orders order.Repository
	now    func() time.Time
	newID  func() string
}

// NewService creates a checkout Service.
func NewService(carts *cart.Service, orders order.Repository) *Service {
	return &Service{
		carts:  carts,
		orders: orders,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// PlaceOrder snapshots the owner's cart into an immutable order: items copied
// by value, payment redacted, promotion reference frozen, totals embedded.
// The order is persisted first and the cart cleared after, so a failed
// persist leaves the cart intact. Fails with ErrEmptyCart on an empty cart.
func (s *Service) PlaceOrder(ctx context.Context, ownerID string, shipping order.ShippingInfo, payment PaymentDetails) (*order.Order, error) {
	c, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "fetch cart")
	}

	totals, err := ComputeOrderTotals(c)
	if err != nil {
		return nil, err
	}

	var promo *cart.AppliedPromotion
	if c.AppliedPromotion != nil {
		snapshot := *c.AppliedPromotion
		promo = &snapshot
	}

	o := &order.Order{
		ID:           s.newID(),
		OwnerID:      ownerID,
		Items:        slices.Clone(c.Items),
		ShippingInfo: shipping,
		PaymentInfo: order.PaymentInfo{
			CardHolder: payment.CardHolder,
			CardNumber: order.MaskCardNumber(payment.CardNumber),
			Expiry:     payment.Expiry,
		},
		AppliedPromotion: promo,
		Subtotal:         c.Subtotal,
		Discount:         c.Discount,
		Shipping:         totals.Shipping,
		Tax:              totals.Tax,
		Total:            totals.Total,
		Status:           order.StatusProcessing,
		CreatedAt:        s.now(),
	}
	o.UpdatedAt = o.CreatedAt

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if err := s.carts.Clear(ctx, ownerID); err != nil {
		return nil, errors.Wrap(err, "clear cart after checkout")
	}

	return o, nil
}

// OrderHistory returns the owner's orders, newest first.
func (s *Service) OrderHistory(ctx context.Context, ownerID string) ([]order.Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// OrderDetails returns one of the owner's orders by ID.
// Returns order.ErrNotFound when absent.
func (s *Service) OrderDetails(ctx context.Context, ownerID, orderID string) (*order.Order, error) {
	return s.orders.GetByOwnerAndID(ctx, ownerID, orderID)
}

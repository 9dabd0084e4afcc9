package checkout

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/order"
	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// --- Mock implementations ---

type memCarts struct {
	carts map[string]*cart.Cart
}

func (m *memCarts) GetByOwner(_ context.Context, ownerID string) (*cart.Cart, error) {
	c, ok := m.carts[ownerID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return &cp, nil
}

func (m *memCarts) Save(_ context.Context, c *cart.Cart) error {
	if c.Version == 0 {
		c.Version = 1
	} else {
		c.Version++
	}
	cp := *c
	cp.Items = slices.Clone(c.Items)
	m.carts[c.OwnerID] = &cp
	return nil
}

type mockProducts struct {
	product.Repository

	byID map[string]*product.Product
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

type mockPromotions struct {
	promotion.Repository
}

func (m *mockPromotions) GetByID(_ context.Context, _ string) (*promotion.Promotion, error) {
	return nil, promotion.ErrNotFound
}

type stubValidator struct{}

func (stubValidator) ValidateCode(_ context.Context, _ string) (*promotion.Promotion, error) {
	return nil, promotion.ErrInvalidCode
}

type mockOrders struct {
	created []*order.Order
	byID    map[string]*order.Order
	err     error
}

func (m *mockOrders) Create(_ context.Context, o *order.Order) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, o)
	return nil
}

func (m *mockOrders) ListByOwner(_ context.Context, ownerID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.created {
		if o.OwnerID == ownerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrders) GetByOwnerAndID(_ context.Context, ownerID, orderID string) (*order.Order, error) {
	o, ok := m.byID[orderID]
	if !ok || o.OwnerID != ownerID {
		return nil, order.ErrNotFound
	}
	return o, nil
}

// --- Helpers ---

func newCheckoutFixture(t *testing.T, products ...product.Product) (*Service, *cart.Service, *mockOrders) {
	t.Helper()

	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	carts := cart.NewService(
		&memCarts{carts: make(map[string]*cart.Cart)},
		&mockProducts{byID: byID},
		&mockPromotions{},
		stubValidator{},
	)

	orders := &mockOrders{byID: make(map[string]*order.Order)}
	svc := NewService(carts, orders)
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "order-test-1" }
	return svc, carts, orders
}

func testShipping() order.ShippingInfo {
	return order.ShippingInfo{
		FullName:   "Alice Smith",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func testPayment() PaymentDetails {
	return PaymentDetails{
		CardHolder: "Alice Smith",
		CardNumber: "4111 1111 1111 1234",
		Expiry:     "12/28",
		CVC:        "123",
	}
}

// --- Tests ---

func TestPlaceOrder(t *testing.T) {
	svc, carts, orders := newCheckoutFixture(t, product.Product{
		ID:    "p1",
		Name:  "Widget",
		Price: dec("24.00"),
	})
	_, err := carts.AddItem(context.Background(), "alice", "p1", 2)
	require.NoError(t, err)

	o, err := svc.PlaceOrder(context.Background(), "alice", testShipping(), testPayment())
	require.NoError(t, err)

	assert.Equal(t, "order-test-1", o.ID)
	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.Equal(t, fixedNow, o.CreatedAt)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	// 48 subtotal: 9.99 shipping, 3.36 tax, 61.35 total.
	assert.True(t, dec("48.00").Equal(o.Subtotal))
	assert.True(t, dec("9.99").Equal(o.Shipping))
	assert.True(t, dec("3.36").Equal(o.Tax))
	assert.True(t, dec("61.35").Equal(o.Total))

	// Payment is redacted before persistence.
	assert.Equal(t, "xxxx-xxxx-xxxx-1234", o.PaymentInfo.CardNumber)

	require.Len(t, orders.created, 1)

	// The cart is cleared after checkout.
	c, err := carts.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestPlaceOrder_FreeShippingOverThreshold(t *testing.T) {
	svc, carts, _ := newCheckoutFixture(t, product.Product{
		ID:    "p1",
		Name:  "Widget",
		Price: dec("30.00"),
	})
	_, err := carts.AddItem(context.Background(), "alice", "p1", 2)
	require.NoError(t, err)

	o, err := svc.PlaceOrder(context.Background(), "alice", testShipping(), testPayment())
	require.NoError(t, err)

	assert.True(t, o.Shipping.IsZero())
	// 60 + 7% tax.
	assert.True(t, dec("4.20").Equal(o.Tax))
	assert.True(t, dec("64.20").Equal(o.Total))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	svc, _, orders := newCheckoutFixture(t)

	_, err := svc.PlaceOrder(context.Background(), "alice", testShipping(), testPayment())
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, orders.created)
}

func TestPlaceOrder_CreateErrorKeepsCart(t *testing.T) {
	svc, carts, orders := newCheckoutFixture(t, product.Product{
		ID:    "p1",
		Name:  "Widget",
		Price: dec("24.00"),
	})
	orders.err = assert.AnError
	_, err := carts.AddItem(context.Background(), "alice", "p1", 1)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), "alice", testShipping(), testPayment())
	require.Error(t, err)

	c, err := carts.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestOrderDetails_NotFound(t *testing.T) {
	svc, _, _ := newCheckoutFixture(t)

	_, err := svc.OrderDetails(context.Background(), "alice", "missing")
	require.ErrorIs(t, err, order.ErrNotFound)
}

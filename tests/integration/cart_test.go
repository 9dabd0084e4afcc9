//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestCart_AddItem(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-add/items", addItemRequest{ProductID: "boombox-mini", Quantity: 2})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if c.Subtotal != 179.98 {
		t.Errorf("subtotal: got %v, want 179.98", c.Subtotal)
	}
	if c.TotalItems != 2 {
		t.Errorf("totalItems: got %d, want 2", c.TotalItems)
	}
	if len(c.Items) != 1 {
		t.Fatalf("items: got %d, want 1", len(c.Items))
	}
	if c.Items[0].LineTotal != 179.98 {
		t.Errorf("lineTotal: got %v, want 179.98", c.Items[0].LineTotal)
	}
}

func TestCart_AddItem_DiscountPriceUsed(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-discount/items", addItemRequest{ProductID: "airbuds-pro", Quantity: 1})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Cart captures the effective price, not the list price.
	c := decodeJSON[cartResponse](t, resp)
	if c.Subtotal != 199.99 {
		t.Errorf("subtotal: got %v, want 199.99", c.Subtotal)
	}
}

func TestCart_AddItem_UnknownProduct(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-unknown/items", addItemRequest{ProductID: "ghost", Quantity: 1})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCart_UpdateAndRemoveItem(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-update/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()

	resp = doRequest(t, http.MethodPut, "/api/cart/cart-update/items/boombox-mini",
		map[string]int{"quantity": 3})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if c.TotalItems != 3 {
		t.Errorf("totalItems: got %d, want 3", c.TotalItems)
	}

	resp = doDelete(t, "/api/cart/cart-update/items/boombox-mini")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	c = decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if len(c.Items) != 0 {
		t.Errorf("items: got %d, want 0", len(c.Items))
	}
}

func TestCart_ApplyPromotion(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-promo/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()

	resp = doPost(t, "/api/cart/cart-promo/promotion", applyPromotionRequest{PromotionCode: "SUMMER20"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// 20% of 89.99 is 18.00 after rounding.
	c := decodeJSON[cartResponse](t, resp)
	if c.Discount != 18.0 {
		t.Errorf("discount: got %v, want 18.0", c.Discount)
	}
	if c.Total != 71.99 {
		t.Errorf("total: got %v, want 71.99", c.Total)
	}
	if c.Promotion == nil || c.Promotion.Code != "SUMMER20" {
		t.Errorf("appliedPromotion: got %+v, want SUMMER20", c.Promotion)
	}
}

func TestCart_ApplyPromotion_CaseInsensitive(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-promo-case/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()

	resp = doPost(t, "/api/cart/cart-promo-case/promotion", applyPromotionRequest{PromotionCode: "summer20"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestCart_ApplyPromotion_InvalidCode(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-bad-code/promotion", applyPromotionRequest{PromotionCode: "BOGUS"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Message != "Invalid promotion code" {
		t.Errorf("message: got %q, want %q", errResp.Message, "Invalid promotion code")
	}
}

func TestCart_ApplyPromotion_Expired(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-expired/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()

	resp = doPost(t, "/api/cart/cart-expired/promotion", applyPromotionRequest{PromotionCode: "WINTER10"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Message != "Promotion has expired" {
		t.Errorf("message: got %q, want %q", errResp.Message, "Promotion has expired")
	}
}

func TestCart_ApplyPromotion_MinimumPurchase(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-minimum/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()

	resp = doPost(t, "/api/cart/cart-minimum/promotion", applyPromotionRequest{PromotionCode: "SAVE15"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	want := "This promotion requires a minimum purchase of $100"
	if errResp.Message != want {
		t.Errorf("message: got %q, want %q", errResp.Message, want)
	}
}

func TestCart_RemovePromotion(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-remove-promo/items", addItemRequest{ProductID: "boombox-mini", Quantity: 1})
	resp.Body.Close()
	resp = doPost(t, "/api/cart/cart-remove-promo/promotion", applyPromotionRequest{PromotionCode: "SUMMER20"})
	resp.Body.Close()

	resp = doDelete(t, "/api/cart/cart-remove-promo/promotion")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	c := decodeJSON[cartResponse](t, resp)
	if c.Discount != 0 {
		t.Errorf("discount: got %v, want 0", c.Discount)
	}
	if c.Promotion != nil {
		t.Errorf("appliedPromotion: got %+v, want nil", c.Promotion)
	}
}

func TestCart_Clear(t *testing.T) {
	resp := doPost(t, "/api/cart/cart-clear/items", addItemRequest{ProductID: "boombox-mini", Quantity: 2})
	resp.Body.Close()

	resp = doDelete(t, "/api/cart/cart-clear")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/cart/cart-clear")
	defer resp.Body.Close()
	c := decodeJSON[cartResponse](t, resp)
	if len(c.Items) != 0 || c.Total != 0 {
		t.Errorf("cart not empty after clear: %+v", c)
	}
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novamart/storefront/internal/domain/cart"
)

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type applyPromotionRequest struct {
	PromotionCode string `json:"promotionCode" validate:"required"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), chi.URLParam(r, "ownerID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.AddItem(r.Context(), chi.URLParam(r, "ownerID"), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(),
		chi.URLParam(r, "ownerID"), chi.URLParam(r, "itemID"), *req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	removed, err := h.carts.RemoveItem(r.Context(), ownerID, chi.URLParam(r, "itemID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !removed {
		respondError(w, r, cart.ErrItemNotFound)
		return
	}

	c, err := h.carts.Get(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerID")
	if err := h.carts.Clear(r.Context(), ownerID); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.carts.Get(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) applyPromotion(w http.ResponseWriter, r *http.Request) {
	var req applyPromotionRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.carts.ApplyPromotion(r.Context(), chi.URLParam(r, "ownerID"), req.PromotionCode)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

func (h *Handler) removePromotion(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemovePromotion(r.Context(), chi.URLParam(r, "ownerID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(c))
}

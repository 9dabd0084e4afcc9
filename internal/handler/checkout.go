package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novamart/storefront/internal/domain/checkout"
	"github.com/novamart/storefront/internal/domain/order"
)

type shippingInfoRequest struct {
	FullName   string `json:"fullName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
}

type paymentInfoRequest struct {
	CardHolder string `json:"cardHolder" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"required,min=12"`
	Expiry     string `json:"expiry" validate:"required"`
	CVC        string `json:"cvc" validate:"required,min=3,max=4"`
}

type placeOrderRequest struct {
	ShippingInfo shippingInfoRequest `json:"shippingInfo" validate:"required"`
	PaymentInfo  paymentInfoRequest  `json:"paymentInfo" validate:"required"`
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), chi.URLParam(r, "ownerID"),
		order.ShippingInfo{
			FullName:   req.ShippingInfo.FullName,
			Address:    req.ShippingInfo.Address,
			City:       req.ShippingInfo.City,
			State:      req.ShippingInfo.State,
			PostalCode: req.ShippingInfo.PostalCode,
			Country:    req.ShippingInfo.Country,
			Email:      req.ShippingInfo.Email,
			Phone:      req.ShippingInfo.Phone,
		},
		checkout.PaymentDetails{
			CardHolder: req.PaymentInfo.CardHolder,
			CardNumber: req.PaymentInfo.CardNumber,
			Expiry:     req.PaymentInfo.Expiry,
			CVC:        req.PaymentInfo.CVC,
		},
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.OrderHistory(r.Context(), chi.URLParam(r, "ownerID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = h.toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.OrderDetails(r.Context(),
		chi.URLParam(r, "ownerID"), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

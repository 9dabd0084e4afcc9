package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/checkout"
	"github.com/novamart/storefront/internal/domain/order"
	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// decode unmarshals the request body into dst and runs struct validation.
// A malformed or invalid body is answered with 422 and reported as false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			writeMessage(w, http.StatusUnprocessableEntity, "invalid field: "+vErrs[0].Field())
			return false
		}
		writeMessage(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

// respondError maps domain errors to HTTP statuses. Business-rule failures
// keep their domain message; anything unrecognized is logged and hidden
// behind a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var minErr *cart.MinimumPurchaseError
	switch {
	case errors.Is(err, promotion.ErrInvalidCode),
		errors.Is(err, promotion.ErrExpired),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, promotion.ErrDuplicateCode),
		errors.As(err, &minErr):
		writeMessage(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, promotion.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

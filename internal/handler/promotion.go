package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/promotion"
)

type promotionRequest struct {
	ID              string    `json:"id"`
	Code            string    `json:"code" validate:"required"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DiscountType    string    `json:"discountType" validate:"required,oneof=percentage fixed bundle"`
	DiscountValue   *float64  `json:"discountValue" validate:"omitempty,gt=0"`
	MinimumPurchase *float64  `json:"minimumPurchase" validate:"omitempty,gt=0"`
	ValidUntil      time.Time `json:"validUntil" validate:"required"`
	AppliesTo       string    `json:"appliesTo" validate:"omitempty,oneof=all category products bundles"`
	CategoryName    string    `json:"categoryName"`
	ProductIDs      []string  `json:"productIds"`
}

func (req *promotionRequest) toDomain(id string) *promotion.Promotion {
	appliesTo := promotion.AppliesTo(req.AppliesTo)
	if appliesTo == "" {
		appliesTo = promotion.AppliesToAll
	}

	p := &promotion.Promotion{
		ID:           id,
		Code:         req.Code,
		Title:        req.Title,
		Description:  req.Description,
		DiscountType: promotion.DiscountType(req.DiscountType),
		ValidUntil:   req.ValidUntil,
		AppliesTo:    appliesTo,
		CategoryName: req.CategoryName,
		ProductIDs:   req.ProductIDs,
	}
	if req.DiscountValue != nil {
		v := decimal.NewFromFloat(*req.DiscountValue).Round(2)
		p.DiscountValue = &v
	}
	if req.MinimumPurchase != nil {
		v := decimal.NewFromFloat(*req.MinimumPurchase).Round(2)
		p.MinimumPurchase = &v
	}
	return p
}

func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponses(promotions))
}

func (h *Handler) listActivePromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.promotions.ListActive(r.Context(), time.Now())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponses(promotions))
}

func (h *Handler) listPromotionsByType(w http.ResponseWriter, r *http.Request) {
	discountType := promotion.DiscountType(chi.URLParam(r, "type"))
	switch discountType {
	case promotion.DiscountPercentage, promotion.DiscountFixed, promotion.DiscountBundle:
	default:
		writeMessage(w, http.StatusUnprocessableEntity, "unknown discount type")
		return
	}

	promotions, err := h.promotions.ListByType(r.Context(), discountType)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponses(promotions))
}

func (h *Handler) getPromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.promotions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponse(*p))
}

func (h *Handler) createPromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	p := req.toDomain(id)
	if err := h.promotions.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromotionResponse(*p))
}

func (h *Handler) updatePromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := req.toDomain(chi.URLParam(r, "id"))
	if err := h.promotions.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponse(*p))
}

func (h *Handler) deletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.promotions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

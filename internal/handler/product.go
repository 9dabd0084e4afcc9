package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

type productRequest struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name" validate:"required"`
	Description        string   `json:"description"`
	Price              float64  `json:"price" validate:"required,gt=0"`
	DiscountPrice      *float64 `json:"discountPrice" validate:"omitempty,gt=0"`
	DiscountPercentage *float64 `json:"discountPercentage" validate:"omitempty,gt=0,lte=100"`
	Stock              int      `json:"stock" validate:"gte=0"`
	Category           string   `json:"category"`
	Image              string   `json:"image"`
	Featured           bool     `json:"featured"`
}

func (req *productRequest) toDomain(id string) *product.Product {
	p := &product.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price).Round(2),
		Stock:       req.Stock,
		Category:    req.Category,
		Image:       req.Image,
		Featured:    req.Featured,
	}
	if req.DiscountPrice != nil {
		v := decimal.NewFromFloat(*req.DiscountPrice).Round(2)
		p.DiscountPrice = &v
	}
	if req.DiscountPercentage != nil {
		v := decimal.NewFromFloat(*req.DiscountPercentage).Round(2)
		p.DiscountPercentage = &v
	}
	return p
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) listProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

// listProductsByPromotion resolves a promotion's target scope to the concrete
// products it covers.
func (h *Handler) listProductsByPromotion(w http.ResponseWriter, r *http.Request) {
	p, err := h.promotions.GetByID(r.Context(), chi.URLParam(r, "promotionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var products []product.Product
	switch p.AppliesTo {
	case promotion.AppliesToCategory:
		products, err = h.products.GetByCategory(r.Context(), p.CategoryName)
	case promotion.AppliesToProducts, promotion.AppliesToBundles:
		products, err = h.products.GetByIDs(r.Context(), p.ProductIDs)
	default:
		products, err = h.products.List(r.Context())
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponses(products))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	p := req.toDomain(id)
	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toProductResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	p := req.toDomain(chi.URLParam(r, "id"))
	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

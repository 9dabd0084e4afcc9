// Package handler exposes the storefront services over HTTP. Routing is
// chi-based; request bodies are validated at the boundary and domain errors
// are mapped to JSON error responses.
package handler

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/checkout"
	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in responses. When
	// empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler routes HTTP requests to the domain services.
type Handler struct {
	products     product.Repository
	promotions   promotion.Repository
	carts        *cart.Service
	checkout     *checkout.Service
	validate     *validator.Validate
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	promotions promotion.Repository,
	carts *cart.Service,
	checkoutSvc *checkout.Service,
) *Handler {
	return &Handler{
		products:     products,
		promotions:   promotions,
		carts:        carts,
		checkout:     checkoutSvc,
		validate:     validator.New(),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
	}
}

// Routes returns the API router, intended to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Get("/category/{category}", h.listProductsByCategory)
		r.Get("/promotion/{promotionID}", h.listProductsByPromotion)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})

	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", h.listPromotions)
		r.Post("/", h.createPromotion)
		r.Get("/active", h.listActivePromotions)
		r.Get("/type/{type}", h.listPromotionsByType)
		r.Get("/{id}", h.getPromotion)
		r.Put("/{id}", h.updatePromotion)
		r.Delete("/{id}", h.deletePromotion)
	})

	r.Route("/cart/{ownerID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addCartItem)
		r.Put("/items/{itemID}", h.updateCartItem)
		r.Delete("/items/{itemID}", h.removeCartItem)
		r.Post("/promotion", h.applyPromotion)
		r.Delete("/promotion", h.removePromotion)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/{ownerID}", h.placeOrder)
		r.Get("/orders/{ownerID}", h.listOrders)
		r.Get("/orders/{ownerID}/{orderID}", h.getOrder)
	})

	return r
}

// resolveImage prepends the configured base URL to relative image paths.
func (h *Handler) resolveImage(path string) string {
	if path == "" || h.imageBaseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return h.imageBaseURL + "/" + strings.TrimPrefix(path, "/")
}

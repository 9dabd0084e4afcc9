package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/novamart/storefront/internal/domain/cart"
	"github.com/novamart/storefront/internal/domain/order"
	"github.com/novamart/storefront/internal/domain/product"
	"github.com/novamart/storefront/internal/domain/promotion"
)

// Response DTOs. Monetary decimals are rendered as JSON numbers; the decimals
// are rounded to cents upstream so the float conversion is exact in practice.

type productResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Price              float64  `json:"price"`
	DiscountPrice      *float64 `json:"discountPrice,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	Stock              int      `json:"stock"`
	Category           string   `json:"category,omitempty"`
	Image              string   `json:"image,omitempty"`
	Featured           bool     `json:"featured"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
		Image:       h.resolveImage(p.Image),
		Featured:    p.Featured,
	}
	if p.DiscountPrice != nil {
		v := p.DiscountPrice.InexactFloat64()
		resp.DiscountPrice = &v
	}
	if p.DiscountPercentage != nil {
		v := p.DiscountPercentage.InexactFloat64()
		resp.DiscountPercentage = &v
	}
	return resp
}

func (h *Handler) toProductResponses(products []product.Product) []productResponse {
	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = h.toProductResponse(p)
	}
	return resp
}

type promotionResponse struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	Title           string    `json:"title,omitempty"`
	Description     string    `json:"description,omitempty"`
	DiscountType    string    `json:"discountType"`
	DiscountValue   *float64  `json:"discountValue,omitempty"`
	MinimumPurchase *float64  `json:"minimumPurchase,omitempty"`
	ValidUntil      time.Time `json:"validUntil"`
	AppliesTo       string    `json:"appliesTo"`
	CategoryName    string    `json:"categoryName,omitempty"`
	ProductIDs      []string  `json:"productIds,omitempty"`
}

func toPromotionResponse(p promotion.Promotion) promotionResponse {
	resp := promotionResponse{
		ID:           p.ID,
		Code:         p.Code,
		Title:        p.Title,
		Description:  p.Description,
		DiscountType: string(p.DiscountType),
		ValidUntil:   p.ValidUntil,
		AppliesTo:    string(p.AppliesTo),
		CategoryName: p.CategoryName,
		ProductIDs:   p.ProductIDs,
	}
	if p.DiscountValue != nil {
		v := p.DiscountValue.InexactFloat64()
		resp.DiscountValue = &v
	}
	if p.MinimumPurchase != nil {
		v := p.MinimumPurchase.InexactFloat64()
		resp.MinimumPurchase = &v
	}
	return resp
}

func toPromotionResponses(promotions []promotion.Promotion) []promotionResponse {
	resp := make([]promotionResponse, len(promotions))
	for i, p := range promotions {
		resp[i] = toPromotionResponse(p)
	}
	return resp
}

type lineItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type appliedPromotionResponse struct {
	PromotionID string `json:"promotionId"`
	Code        string `json:"code"`
	Title       string `json:"title,omitempty"`
}

type cartResponse struct {
	OwnerID          string                    `json:"ownerId"`
	Items            []lineItemResponse        `json:"items"`
	AppliedPromotion *appliedPromotionResponse `json:"appliedPromotion,omitempty"`
	Subtotal         float64                   `json:"subtotal"`
	Discount         float64                   `json:"discount"`
	Total            float64                   `json:"total"`
	TotalItems       int                       `json:"totalItems"`
}

func (h *Handler) toCartResponse(c *cart.Cart) cartResponse {
	resp := cartResponse{
		OwnerID:    c.OwnerID,
		Items:      h.toLineItemResponses(c.Items),
		Subtotal:   c.Subtotal.InexactFloat64(),
		Discount:   c.Discount.InexactFloat64(),
		Total:      c.Total.InexactFloat64(),
		TotalItems: c.TotalItems,
	}
	if c.AppliedPromotion != nil {
		resp.AppliedPromotion = toAppliedPromotionResponse(c.AppliedPromotion)
	}
	return resp
}

func (h *Handler) toLineItemResponses(items []cart.LineItem) []lineItemResponse {
	resp := make([]lineItemResponse, len(items))
	for i, it := range items {
		resp[i] = lineItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			Image:     h.resolveImage(it.Image),
			Quantity:  it.Quantity,
			LineTotal: it.UnitPrice.Mul(quantityDecimal(it.Quantity)).InexactFloat64(),
		}
	}
	return resp
}

func quantityDecimal(q int) decimal.Decimal {
	return decimal.NewFromInt(int64(q))
}

func toAppliedPromotionResponse(p *cart.AppliedPromotion) *appliedPromotionResponse {
	return &appliedPromotionResponse{
		PromotionID: p.PromotionID,
		Code:        p.Code,
		Title:       p.Title,
	}
}

type orderResponse struct {
	ID               string                    `json:"id"`
	Items            []lineItemResponse        `json:"items"`
	ShippingInfo     order.ShippingInfo        `json:"shippingInfo"`
	PaymentInfo      order.PaymentInfo         `json:"paymentInfo"`
	AppliedPromotion *appliedPromotionResponse `json:"appliedPromotion,omitempty"`
	Subtotal         float64                   `json:"subtotal"`
	Discount         float64                   `json:"discount"`
	Shipping         float64                   `json:"shipping"`
	Tax              float64                   `json:"tax"`
	Total            float64                   `json:"total"`
	Status           string                    `json:"status"`
	CreatedAt        time.Time                 `json:"createdAt"`
}

func (h *Handler) toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		Items:        h.toLineItemResponses(o.Items),
		ShippingInfo: o.ShippingInfo,
		PaymentInfo:  o.PaymentInfo,
		Subtotal:     o.Subtotal.InexactFloat64(),
		Discount:     o.Discount.InexactFloat64(),
		Shipping:     o.Shipping.InexactFloat64(),
		Tax:          o.Tax.InexactFloat64(),
		Total:        o.Total.InexactFloat64(),
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
	if o.AppliedPromotion != nil {
		resp.AppliedPromotion = toAppliedPromotionResponse(o.AppliedPromotion)
	}
	return resp
}

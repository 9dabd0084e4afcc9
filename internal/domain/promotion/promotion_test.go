package promotion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name       string
		validUntil time.Time
		want       bool
	}{
		{"future", fixedNow.Add(time.Hour), true},
		{"past", fixedNow.Add(-time.Hour), false},
		{"exactly now", fixedNow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Promotion{ValidUntil: tt.validUntil}
			assert.Equal(t, tt.want, p.IsValid(fixedNow))
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		promo    Promotion
		subtotal string
		want     string
	}{
		{
			name: "percentage",
			promo: Promotion{
				DiscountType:  DiscountPercentage,
				DiscountValue: decPtr("20"),
			},
			subtotal: "60.00",
			want:     "12.00",
		},
		{
			name: "percentage rounds to cents",
			promo: Promotion{
				DiscountType:  DiscountPercentage,
				DiscountValue: decPtr("15"),
			},
			subtotal: "33.33",
			want:     "5.00",
		},
		{
			name: "fixed",
			promo: Promotion{
				DiscountType:  DiscountFixed,
				DiscountValue: decPtr("15"),
			},
			subtotal: "60.00",
			want:     "15.00",
		},
		{
			name: "fixed capped at subtotal",
			promo: Promotion{
				DiscountType:  DiscountFixed,
				DiscountValue: decPtr("50"),
			},
			subtotal: "30.00",
			want:     "30.00",
		},
		{
			name: "bundle grants nothing",
			promo: Promotion{
				DiscountType:  DiscountBundle,
				DiscountValue: decPtr("10"),
			},
			subtotal: "100.00",
			want:     "0",
		},
		{
			name: "minimum purchase unmet",
			promo: Promotion{
				DiscountType:    DiscountFixed,
				DiscountValue:   decPtr("15"),
				MinimumPurchase: decPtr("100"),
			},
			subtotal: "60.00",
			want:     "0",
		},
		{
			name: "minimum purchase met exactly",
			promo: Promotion{
				DiscountType:    DiscountFixed,
				DiscountValue:   decPtr("15"),
				MinimumPurchase: decPtr("60"),
			},
			subtotal: "60.00",
			want:     "15.00",
		},
		{
			name: "percentage without value",
			promo: Promotion{
				DiscountType: DiscountPercentage,
			},
			subtotal: "60.00",
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.promo.Discount(dec(tt.subtotal))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

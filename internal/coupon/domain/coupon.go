package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/pricing"
)

type Coupon struct {
	ID            string               `json:"id"`
	Code          string               `json:"code"` // Selalu disimpan uppercase
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
	IsActive      bool                 `json:"is_active"`
	IsFeatured    bool                 `json:"is_featured"`
	ExpiryDate    *time.Time           `json:"expiry_date,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type CreateCouponRequest struct {
	Code          string          `json:"code" binding:"required"`
	DiscountType  string          `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal `json:"discount_value" binding:"required"`
	IsActive      *bool           `json:"is_active"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
}

type UpdateCouponRequest struct {
	DiscountType  *string          `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	IsActive      *bool            `json:"is_active"`
	ExpiryDate    *time.Time       `json:"expiry_date"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode" binding:"required"`
}

// AppliedCoupon adalah deskriptor diskon yang dikembalikan ke client
// dan dipakai Pricing Engine. Bukan redemption: tidak ada state yang berubah.
type AppliedCoupon struct {
	Code          string               `json:"code"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal      `json:"discount_value"`
}

func (a AppliedCoupon) ToDiscount() *pricing.Discount {
	return &pricing.Discount{Code: a.Code, Type: a.DiscountType, Value: a.DiscountValue}
}

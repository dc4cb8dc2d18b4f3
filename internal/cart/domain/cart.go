package domain

import (
	"github.com/shopspring/decimal"
)

type QuoteItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	VariantID *string `json:"variantId"`
	Quantity  int     `json:"qty" binding:"required,gt=0"`
}

type QuoteRequest struct {
	Items      []QuoteItemRequest `json:"items" binding:"required,dive"`
	CouponCode string             `json:"couponCode"`
}

// QuoteLine adalah baris keranjang dengan harga hasil resolusi server.
type QuoteLine struct {
	ProductID string          `json:"productId"`
	VariantID *string         `json:"variantId,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"qty"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Quote adalah tampilan harga keranjang. Tidak ada state yang disimpan:
// keranjang hidup di client, quote dihitung ulang setiap request.
type Quote struct {
	Items      []QuoteLine     `json:"items"`
	CouponCode string          `json:"couponCode,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

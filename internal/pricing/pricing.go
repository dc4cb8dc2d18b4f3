package pricing

import (
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// LineItem adalah satu baris keranjang dengan harga yang sudah di-resolve server.
// VariantDelta boleh negatif (varian lebih murah dari harga dasar).
type LineItem struct {
	BasePrice    decimal.Decimal
	VariantDelta decimal.Decimal
	Quantity     int
}

// Discount adalah deskriptor diskon hasil validasi kupon.
type Discount struct {
	Code  string
	Type  DiscountType
	Value decimal.Decimal
}

type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// EffectiveUnitPrice = harga dasar + delta varian.
func (li LineItem) EffectiveUnitPrice() decimal.Decimal {
	return li.BasePrice.Add(li.VariantDelta)
}

// ComputeTotals menghitung subtotal, diskon, dan grand total dari item keranjang.
// Pure function: tanpa I/O, hasil identik untuk input identik.
// Diskon selalu di-clamp ke [0, subtotal] supaya grand total tidak pernah negatif.
func ComputeTotals(items []LineItem, coupon *Discount) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.EffectiveUnitPrice().Mul(qty))
	}

	discount := decimal.Zero
	if coupon != nil {
		switch coupon.Type {
		case DiscountPercentage:
			discount = subtotal.Mul(coupon.Value).Div(oneHundred).Round(2)
		case DiscountFixed:
			discount = coupon.Value
		}
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		GrandTotal: subtotal.Sub(discount),
	}
}

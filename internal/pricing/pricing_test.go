package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeTotals(t *testing.T) {
	items := []LineItem{
		{BasePrice: d("1000"), VariantDelta: d("200"), Quantity: 2},
	}

	t.Run("percentage coupon", func(t *testing.T) {
		coupon := &Discount{Code: "SAVE10", Type: DiscountPercentage, Value: d("10")}
		totals := ComputeTotals(items, coupon)

		assert.True(t, totals.Subtotal.Equal(d("2400")), "subtotal = %s", totals.Subtotal)
		assert.True(t, totals.Discount.Equal(d("240")), "discount = %s", totals.Discount)
		assert.True(t, totals.GrandTotal.Equal(d("2160")), "grand total = %s", totals.GrandTotal)
	})

	t.Run("fixed coupon clamped to subtotal", func(t *testing.T) {
		coupon := &Discount{Code: "MEGA", Type: DiscountFixed, Value: d("5000")}
		totals := ComputeTotals(items, coupon)

		assert.True(t, totals.Subtotal.Equal(d("2400")))
		assert.True(t, totals.Discount.Equal(d("2400")))
		assert.True(t, totals.GrandTotal.IsZero(), "grand total never negative, got %s", totals.GrandTotal)
	})

	t.Run("no coupon", func(t *testing.T) {
		totals := ComputeTotals(items, nil)

		assert.True(t, totals.Subtotal.Equal(d("2400")))
		assert.True(t, totals.Discount.IsZero())
		assert.True(t, totals.GrandTotal.Equal(d("2400")))
	})

	t.Run("negative variant delta lowers the unit price", func(t *testing.T) {
		cheaper := []LineItem{
			{BasePrice: d("1000"), VariantDelta: d("-150"), Quantity: 3},
		}
		totals := ComputeTotals(cheaper, nil)

		assert.True(t, totals.Subtotal.Equal(d("2550")))
	})

	t.Run("negative discount value treated as zero", func(t *testing.T) {
		coupon := &Discount{Code: "WEIRD", Type: DiscountFixed, Value: d("-50")}
		totals := ComputeTotals(items, coupon)

		assert.True(t, totals.Discount.IsZero())
		assert.True(t, totals.GrandTotal.Equal(totals.Subtotal))
	})

	t.Run("empty cart", func(t *testing.T) {
		coupon := &Discount{Code: "SAVE10", Type: DiscountPercentage, Value: d("10")}
		totals := ComputeTotals(nil, coupon)

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Discount.IsZero())
		assert.True(t, totals.GrandTotal.IsZero())
	})
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{BasePrice: d("799.99"), VariantDelta: d("120.50"), Quantity: 1},
		{BasePrice: d("45.25"), Quantity: 4},
	}
	coupon := &Discount{Code: "RIDE15", Type: DiscountPercentage, Value: d("15")}

	first := ComputeTotals(items, coupon)
	second := ComputeTotals(items, coupon)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
}

package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/cart/domain"
	coupondomain "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/pricing"
	productdomain "github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
)

var ErrEmptyCart = errors.New("cart must contain at least one item")

// Catalog me-resolve harga otoritatif dari katalog produk.
type Catalog interface {
	ResolveLine(ctx context.Context, productID string, variantID *string) (*productdomain.Product, *productdomain.Variant, error)
}

// CouponValidator memvalidasi kode kupon menjadi deskriptor diskon.
type CouponValidator interface {
	Apply(ctx context.Context, code string) (*coupondomain.AppliedCoupon, error)
}

type CartService interface {
	Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error)
}

type cartServiceImpl struct {
	catalog Catalog
	coupons CouponValidator
}

func NewCartService(catalog Catalog, coupons CouponValidator) CartService {
	return &cartServiceImpl{catalog: catalog, coupons: coupons}
}

// Quote menghitung tampilan harga keranjang. Harga selalu di-resolve ulang dari
// katalog, sama seperti saat checkout, supaya angka yang dilihat user konsisten
// dengan angka yang nanti dibekukan ke order.
func (s *cartServiceImpl) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	quoteLines := make([]domain.QuoteLine, 0, len(req.Items))
	for _, itemReq := range req.Items {
		product, variant, err := s.catalog.ResolveLine(ctx, itemReq.ProductID, itemReq.VariantID)
		if err != nil {
			return nil, err
		}

		line := pricing.LineItem{BasePrice: product.Price, Quantity: itemReq.Quantity}
		name := product.Name
		if variant != nil {
			line.VariantDelta = variant.PriceDelta
			name = product.Name + " (" + variant.Name + ")"
		}
		lineItems = append(lineItems, line)

		unitPrice := line.EffectiveUnitPrice()
		quoteLines = append(quoteLines, domain.QuoteLine{
			ProductID: product.ID,
			VariantID: itemReq.VariantID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  itemReq.Quantity,
			LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))),
		})
	}

	var discount *pricing.Discount
	quote := &domain.Quote{Items: quoteLines}
	if req.CouponCode != "" {
		applied, err := s.coupons.Apply(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = applied.ToDiscount()
		quote.CouponCode = applied.Code
	}

	totals := pricing.ComputeTotals(lineItems, discount)
	quote.Subtotal = totals.Subtotal
	quote.Discount = totals.Discount
	quote.GrandTotal = totals.GrandTotal
	return quote, nil
}

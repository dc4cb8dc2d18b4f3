package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	coupondomain "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	productdomain "github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ResolveLine(ctx context.Context, productID string, variantID *string) (*productdomain.Product, *productdomain.Variant, error) {
	args := m.Called(ctx, productID, variantID)
	var product *productdomain.Product
	var variant *productdomain.Variant
	if p := args.Get(0); p != nil {
		product = p.(*productdomain.Product)
	}
	if v := args.Get(1); v != nil {
		variant = v.(*productdomain.Variant)
	}
	return product, variant, args.Error(2)
}

type MockCouponValidator struct {
	mock.Mock
}

func (m *MockCouponValidator) Apply(ctx context.Context, code string) (*coupondomain.AppliedCoupon, error) {
	args := m.Called(ctx, code)
	if a := args.Get(0); a != nil {
		return a.(*coupondomain.AppliedCoupon), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPaymentClient struct {
	mock.Mock
}

func (m *MockPaymentClient) CreateRefund(ctx context.Context, paymentID string) (string, error) {
	args := m.Called(ctx, paymentID)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetEmail(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

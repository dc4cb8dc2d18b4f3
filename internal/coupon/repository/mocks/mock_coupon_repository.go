package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	if coupon != nil && args.Error(0) == nil {
		coupon.ID = "mock-coupon-id"
	}
	return args.Error(0)
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if c := args.Get(0); c != nil {
		return c.(*domain.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*domain.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	args := m.Called(ctx)
	if c := args.Get(0); c != nil {
		return c.([]domain.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCouponRepository) SetFeatured(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

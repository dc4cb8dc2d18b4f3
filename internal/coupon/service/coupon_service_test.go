package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository/mocks"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/pricing"
)

func TestCouponService_Apply(t *testing.T) {
	ctx := context.TODO()

	activeCoupon := &domain.Coupon{
		ID:            "c1",
		Code:          "RIDE10",
		DiscountType:  pricing.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true,
	}

	t.Run("valid coupon, code normalized to uppercase", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("GetByCode", ctx, "RIDE10").Return(activeCoupon, nil).Once()

		applied, err := svc.Apply(ctx, "  ride10 ")

		assert.NoError(t, err)
		assert.Equal(t, "RIDE10", applied.Code)
		assert.Equal(t, pricing.DiscountPercentage, applied.DiscountType)
		assert.True(t, applied.DiscountValue.Equal(decimal.NewFromInt(10)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("GetByCode", ctx, "NOPE").Return(nil, repository.ErrCouponNotFound).Once()

		applied, err := svc.Apply(ctx, "nope")

		assert.Nil(t, applied)
		assert.ErrorIs(t, err, repository.ErrCouponNotFound)
	})

	t.Run("inactive coupon", func(t *testing.T) {
		inactive := &domain.Coupon{Code: "OLD", DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(50), IsActive: false}
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("GetByCode", ctx, "OLD").Return(inactive, nil).Once()

		applied, err := svc.Apply(ctx, "OLD")

		assert.Nil(t, applied)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("expired coupon", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		expired := &domain.Coupon{Code: "GONE", DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(50), IsActive: true, ExpiryDate: &past}
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("GetByCode", ctx, "GONE").Return(expired, nil).Once()

		applied, err := svc.Apply(ctx, "GONE")

		assert.Nil(t, applied)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})

	t.Run("expiry in the future is still valid", func(t *testing.T) {
		future := time.Now().Add(24 * time.Hour)
		valid := &domain.Coupon{Code: "SOON", DiscountType: pricing.DiscountFixed, DiscountValue: decimal.NewFromInt(50), IsActive: true, ExpiryDate: &future}
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("GetByCode", ctx, "SOON").Return(valid, nil).Once()

		applied, err := svc.Apply(ctx, "SOON")

		assert.NoError(t, err)
		assert.Equal(t, "SOON", applied.Code)
	})
}

func TestCouponService_Create(t *testing.T) {
	ctx := context.TODO()

	t.Run("code stored uppercase, active by default", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Coupon")).Return(nil).Once()

		coupon, err := svc.Create(ctx, domain.CreateCouponRequest{
			Code:          "summer25",
			DiscountType:  "percentage",
			DiscountValue: decimal.NewFromInt(25),
		})

		assert.NoError(t, err)
		assert.Equal(t, "SUMMER25", coupon.Code)
		assert.True(t, coupon.IsActive)
		mockRepo.AssertExpectations(t)
	})

	t.Run("negative discount value rejected", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)

		coupon, err := svc.Create(ctx, domain.CreateCouponRequest{
			Code:          "BAD",
			DiscountType:  "fixed",
			DiscountValue: decimal.NewFromInt(-5),
		})

		assert.Nil(t, coupon)
		assert.ErrorIs(t, err, ErrInvalidDiscountValue)
		mockRepo.AssertNotCalled(t, "Create")
	})
}

func TestCouponService_SetFeatured(t *testing.T) {
	ctx := context.TODO()

	t.Run("delegates to the transactional repo operation", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("SetFeatured", ctx, "c2").Return(nil).Once()

		err := svc.SetFeatured(ctx, "c2")

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unknown id", func(t *testing.T) {
		mockRepo := new(mocks.MockCouponRepository)
		svc := NewCouponService(mockRepo)
		mockRepo.On("SetFeatured", ctx, "ghost").Return(repository.ErrCouponNotFound).Once()

		err := svc.SetFeatured(ctx, "ghost")

		assert.ErrorIs(t, err, repository.ErrCouponNotFound)
	})
}

func TestCouponService_SweepExpired(t *testing.T) {
	mockRepo := new(mocks.MockCouponRepository)
	svc := NewCouponService(mockRepo)
	mockRepo.On("DeactivateExpired", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(2), nil).Once()

	svc.SweepExpired(context.Background())

	mockRepo.AssertExpectations(t)
}

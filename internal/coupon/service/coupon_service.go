package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/pricing"
)

var (
	ErrCouponInactive       = errors.New("coupon is not active")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrInvalidDiscountValue = errors.New("discount value must not be negative")
)

type CouponService interface {
	Apply(ctx context.Context, code string) (*domain.AppliedCoupon, error)
	Create(ctx context.Context, req domain.CreateCouponRequest) (*domain.Coupon, error)
	Update(ctx context.Context, id string, req domain.UpdateCouponRequest) (*domain.Coupon, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Coupon, error)
	SetFeatured(ctx context.Context, id string) error
	SweepExpired(ctx context.Context)
	StartExpirySweep()
}

type couponServiceImpl struct {
	repo      repository.CouponRepository
	scheduler *cron.Cron
}

func NewCouponService(repo repository.CouponRepository) CouponService {
	return &couponServiceImpl{repo: repo}
}

// StartExpirySweep menjalankan job berkala yang menonaktifkan kupon kedaluwarsa.
// Dipanggil dari main, bukan constructor, supaya unit test tidak ikut menjalankan cron.
func (s *couponServiceImpl) StartExpirySweep() {
	spec := "0 0 * * * *" // Tiap jam
	s.scheduler = cron.New(cron.WithSeconds())
	s.scheduler.AddFunc(spec, func() {
		s.SweepExpired(context.Background())
	})
	s.scheduler.Start()
	logger.Info(fmt.Sprintf("Coupon expiry sweep scheduled with spec '%s'", spec))
}

func (s *couponServiceImpl) SweepExpired(ctx context.Context) {
	count, err := s.repo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		logger.Error("SweepExpired: failed to deactivate expired coupons", err)
		return
	}
	if count > 0 {
		logger.Info(fmt.Sprintf("SweepExpired: deactivated %d expired coupons", count))
	}
}

// Apply memvalidasi kode kupon dan mengembalikan deskriptor diskon.
// Tidak ada state yang berubah: validasi diulang dari awal di setiap panggilan.
func (s *couponServiceImpl) Apply(ctx context.Context, code string) (*domain.AppliedCoupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.repo.GetByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, ErrCouponInactive
	}
	if coupon.ExpiryDate != nil && coupon.ExpiryDate.Before(time.Now()) {
		return nil, ErrCouponExpired
	}

	return &domain.AppliedCoupon{
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
	}, nil
}

func (s *couponServiceImpl) Create(ctx context.Context, req domain.CreateCouponRequest) (*domain.Coupon, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &domain.Coupon{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:  pricing.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		IsActive:      isActive,
		ExpiryDate:    req.ExpiryDate,
	}
	if coupon.DiscountValue.IsNegative() {
		return nil, ErrInvalidDiscountValue
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *couponServiceImpl) Update(ctx context.Context, id string, req domain.UpdateCouponRequest) (*domain.Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountType != nil {
		coupon.DiscountType = pricing.DiscountType(*req.DiscountType)
	}
	if req.DiscountValue != nil {
		if req.DiscountValue.IsNegative() {
			return nil, ErrInvalidDiscountValue
		}
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if req.ExpiryDate != nil {
		coupon.ExpiryDate = req.ExpiryDate
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *couponServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *couponServiceImpl) List(ctx context.Context) ([]domain.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *couponServiceImpl) SetFeatured(ctx context.Context, id string) error {
	return s.repo.SetFeatured(ctx, id)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq" // Untuk pq.Error

	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponConflict = errors.New("coupon with this code already exists")
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	GetByID(ctx context.Context, id string) (*domain.Coupon, error)
	List(ctx context.Context) ([]domain.Coupon, error)
	Update(ctx context.Context, coupon *domain.Coupon) error
	Delete(ctx context.Context, id string) error
	SetFeatured(ctx context.Context, id string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresCouponRepository struct {
	db *sql.DB
}

func NewPostgresCouponRepository(db *sql.DB) CouponRepository {
	return &postgresCouponRepository{db: db}
}

const couponColumns = `id, code, discount_type, discount_value, is_active, is_featured, expiry_date, created_at, updated_at`

func scanCoupon(row interface{ Scan(...interface{}) error }) (*domain.Coupon, error) {
	var c domain.Coupon
	var expiry sql.NullTime
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.IsActive, &c.IsFeatured, &expiry, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiry.Valid {
		c.ExpiryDate = &expiry.Time
	}
	return &c, nil
}

func (r *postgresCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `INSERT INTO coupons (code, discount_type, discount_value, is_active, is_featured, expiry_date, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`

	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = time.Now()

	var expiry sql.NullTime
	if coupon.ExpiryDate != nil {
		expiry = sql.NullTime{Time: *coupon.ExpiryDate, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		coupon.Code, coupon.DiscountType, coupon.DiscountValue, coupon.IsActive, coupon.IsFeatured,
		expiry, coupon.CreatedAt, coupon.UpdatedAt).
		Scan(&coupon.ID, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		// Kode error '23505' adalah unique_violation (kolom code)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrCouponConflict
		}
		logger.Error("CouponRepo.Create: failed to insert coupon", err)
		return err
	}
	return nil
}

func (r *postgresCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	coupon, err := scanCoupon(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		logger.Error("CouponRepo.GetByCode: query failed", err)
		return nil, err
	}
	return coupon, nil
}

func (r *postgresCouponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	coupon, err := scanCoupon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		logger.Error("CouponRepo.GetByID: query failed", err)
		return nil, err
	}
	return coupon, nil
}

func (r *postgresCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("CouponRepo.List: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			logger.Error("CouponRepo.List: scan failed", err)
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (r *postgresCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	query := `UPDATE coupons
              SET discount_type = $1, discount_value = $2, is_active = $3, expiry_date = $4, updated_at = NOW()
              WHERE id = $5`

	var expiry sql.NullTime
	if coupon.ExpiryDate != nil {
		expiry = sql.NullTime{Time: *coupon.ExpiryDate, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, coupon.DiscountType, coupon.DiscountValue, coupon.IsActive, expiry, coupon.ID)
	if err != nil {
		logger.Error("CouponRepo.Update: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (r *postgresCouponRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		logger.Error("CouponRepo.Delete: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// SetFeatured menjamin tepat satu kupon featured: unset semua lalu set target,
// dua-duanya dalam satu transaksi supaya pembaca tidak pernah melihat dua
// kupon featured atau nol saat seharusnya ada satu.
func (r *postgresCouponRepository) SetFeatured(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CouponRepo.SetFeatured: failed to begin tx", err)
		return err
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	if _, err := tx.ExecContext(ctx, `UPDATE coupons SET is_featured = FALSE, updated_at = NOW() WHERE is_featured = TRUE`); err != nil {
		logger.Error("CouponRepo.SetFeatured: failed to unset previous featured", err)
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE coupons SET is_featured = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.Error("CouponRepo.SetFeatured: failed to set featured", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCouponNotFound // Rollback: featured lama tetap utuh
	}

	return tx.Commit()
}

func (r *postgresCouponRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE coupons SET is_active = FALSE, updated_at = NOW()
              WHERE is_active = TRUE AND expiry_date IS NOT NULL AND expiry_date < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		logger.Error("CouponRepo.DeactivateExpired: exec failed", err)
		return 0, err
	}
	rowsAffected, _ := res.RowsAffected()
	return rowsAffected, nil
}

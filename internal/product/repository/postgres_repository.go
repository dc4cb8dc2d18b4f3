package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	CreateProductWithVariants(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

// CreateProductWithVariants menyimpan produk dan variannya dalam satu transaksi.
func (r *postgresProductRepository) CreateProductWithVariants(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("CreateProductWithVariants: failed to begin tx", err)
		return err
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	productQuery := `INSERT INTO products (name, description, price, image, stock, created_at, updated_at)
                     VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`

	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	err = tx.QueryRowContext(ctx, productQuery,
		product.Name, product.Description, product.Price, product.Image, product.Stock,
		product.CreatedAt, product.UpdatedAt).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		logger.Error("CreateProductWithVariants: failed to insert product", err)
		return err
	}

	variantStmt, err := tx.PrepareContext(ctx, `INSERT INTO product_variants (product_id, name, price_delta, stock)
                                                VALUES ($1, $2, $3, $4) RETURNING id`)
	if err != nil {
		logger.Error("CreateProductWithVariants: failed to prepare variant statement", err)
		return err
	}
	defer variantStmt.Close()

	for i := range product.Variants {
		product.Variants[i].ProductID = product.ID
		err = variantStmt.QueryRowContext(ctx, product.ID, product.Variants[i].Name,
			product.Variants[i].PriceDelta, product.Variants[i].Stock).
			Scan(&product.Variants[i].ID)
		if err != nil {
			logger.Error("CreateProductWithVariants: failed to insert variant", err)
			return err // Rollback akan terjadi
		}
	}

	return tx.Commit()
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT id, name, description, price, image, stock, created_at, updated_at
              FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err)
		return nil, err
	}

	variants, err := r.getVariants(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

func (r *postgresProductRepository) getVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	query := `SELECT id, product_id, name, price_delta, stock FROM product_variants WHERE product_id = $1 ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		logger.Error("getVariants: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var variants []domain.Variant
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceDelta, &v.Stock); err != nil {
			logger.Error("getVariants: scan failed", err)
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name, description, price, image, stock, created_at, updated_at
              FROM products ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `UPDATE products
              SET name = $1, description = $2, price = $3, image = $4, stock = $5, updated_at = NOW()
              WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Image, product.Stock, product.ID)
	if err != nil {
		logger.Error("UpdateProduct: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.Error("DeleteProduct: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

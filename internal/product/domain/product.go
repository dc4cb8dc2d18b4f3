package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"` // Harga dasar; varian menambah/mengurangi lewat PriceDelta
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Variants    []Variant       `json:"variants,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Variant adalah sub-opsi produk (warna/ukuran) dengan delta harga dan stok sendiri.
type Variant struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"-"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"` // Boleh negatif
	Stock      int             `json:"stock"`
}

type CreateVariantRequest struct {
	Name       string          `json:"name" binding:"required"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	Stock      int             `json:"stock" binding:"gte=0"`
}

type CreateProductRequest struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description"`
	Price       decimal.Decimal        `json:"price" binding:"required"`
	Image       string                 `json:"image"`
	Stock       int                    `json:"stock" binding:"gte=0"`
	Variants    []CreateVariantRequest `json:"variants" binding:"omitempty,dive"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
}

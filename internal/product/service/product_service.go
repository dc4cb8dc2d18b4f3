package service

import (
	"context"
	"errors"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
)

var ErrVariantNotFound = errors.New("variant not found on this product")

type ProductService interface {
	Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	ResolveLine(ctx context.Context, productID string, variantID *string) (*domain.Product, *domain.Variant, error)
}

type productServiceImpl struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productServiceImpl{repo: repo}
}

func (s *productServiceImpl) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Stock:       req.Stock,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, domain.Variant{
			Name:       v.Name,
			PriceDelta: v.PriceDelta,
			Stock:      v.Stock,
		})
	}

	if err := s.repo.CreateProductWithVariants(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productServiceImpl) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *productServiceImpl) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *productServiceImpl) Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// ResolveLine mengambil produk plus varian terpilih (jika ada) untuk resolusi
// harga otoritatif di sisi server. Harga dari client tidak pernah dipercaya.
func (s *productServiceImpl) ResolveLine(ctx context.Context, productID string, variantID *string) (*domain.Product, *domain.Variant, error) {
	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	if variantID == nil || *variantID == "" {
		return product, nil, nil
	}
	for i := range product.Variants {
		if product.Variants[i].ID == *variantID {
			return product, &product.Variants[i], nil
		}
	}
	return nil, nil, ErrVariantNotFound
}

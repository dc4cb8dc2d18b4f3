package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository/mocks"
)

func TestProductService_ResolveLine(t *testing.T) {
	ctx := context.TODO()

	bike := &domain.Product{
		ID:    "p1",
		Name:  "Trail Pro 29",
		Price: decimal.NewFromInt(1000),
		Variants: []domain.Variant{
			{ID: "v1", ProductID: "p1", Name: "Red / L", PriceDelta: decimal.NewFromInt(200), Stock: 3},
			{ID: "v2", ProductID: "p1", Name: "Black / M", PriceDelta: decimal.NewFromInt(-100), Stock: 5},
		},
	}

	t.Run("without variant", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "p1").Return(bike, nil).Once()

		product, variant, err := svc.ResolveLine(ctx, "p1", nil)

		assert.NoError(t, err)
		assert.Equal(t, "p1", product.ID)
		assert.Nil(t, variant)
	})

	t.Run("with variant", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "p1").Return(bike, nil).Once()

		variantID := "v1"
		product, variant, err := svc.ResolveLine(ctx, "p1", &variantID)

		assert.NoError(t, err)
		assert.Equal(t, "p1", product.ID)
		assert.Equal(t, "Red / L", variant.Name)
		assert.True(t, variant.PriceDelta.Equal(decimal.NewFromInt(200)))
	})

	t.Run("variant not on product", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "p1").Return(bike, nil).Once()

		variantID := "ghost"
		product, variant, err := svc.ResolveLine(ctx, "p1", &variantID)

		assert.Nil(t, product)
		assert.Nil(t, variant)
		assert.ErrorIs(t, err, ErrVariantNotFound)
	})

	t.Run("product not found", func(t *testing.T) {
		mockRepo := new(mocks.MockProductRepository)
		svc := NewProductService(mockRepo)
		mockRepo.On("GetProductByID", ctx, "missing").Return(nil, repository.ErrProductNotFound).Once()

		_, _, err := svc.ResolveLine(ctx, "missing", nil)

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
	})
}

func TestProductService_Create(t *testing.T) {
	ctx := context.TODO()
	mockRepo := new(mocks.MockProductRepository)
	svc := NewProductService(mockRepo)
	mockRepo.On("CreateProductWithVariants", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()

	product, err := svc.Create(ctx, domain.CreateProductRequest{
		Name:  "City Cruiser",
		Price: decimal.NewFromInt(450),
		Stock: 10,
		Variants: []domain.CreateVariantRequest{
			{Name: "Step-through", PriceDelta: decimal.NewFromInt(25), Stock: 4},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "mock-product-id", product.ID)
	assert.Len(t, product.Variants, 1)
	mockRepo.AssertExpectations(t)
}

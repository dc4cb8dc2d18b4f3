package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/product/service"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(ps service.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// RegisterRoutes: katalog bisa dibaca publik, mutasi hanya admin.
func (h *ProductHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/products", h.ListProducts)
	public.GET("/products/:id", h.GetProduct)

	adminRoutes := admin.Group("/products")
	{
		adminRoutes.POST("", h.CreateProduct)
		adminRoutes.PUT("/:id", h.UpdateProduct)
		adminRoutes.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.List(c.Request.Context())
	if err != nil {
		logger.Error("ListProducts Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		logger.Error("GetProduct Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to get product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		logger.Error("CreateProduct Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		logger.Error("UpdateProduct Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	err := h.productService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		logger.Error("DeleteProduct Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

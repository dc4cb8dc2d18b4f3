package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/cart/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/cart/service"
	couponrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	couponservice "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/service"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	productrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
	productservice "github.com/cyclebazaar/cycle-bazaar-go/internal/product/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cs service.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

func (h *CartHandler) RegisterRoutes(authed *gin.RouterGroup) {
	authed.POST("/cart/quote", h.Quote)
}

func (h *CartHandler) Quote(c *gin.Context) {
	var req domain.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	quote, err := h.cartService.Quote(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, couponrepo.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
		case errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, couponservice.ErrCouponInactive),
			errors.Is(err, couponservice.ErrCouponExpired),
			errors.Is(err, productrepo.ErrProductNotFound),
			errors.Is(err, productservice.ErrVariantNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logger.Error("Quote Hdl: unhandled service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to compute cart quote"})
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/service"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
)

type CouponHandler struct {
	couponService service.CouponService
}

func NewCouponHandler(cs service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: cs}
}

// RegisterRoutes memasang route kupon: apply untuk user login, sisanya admin.
func (h *CouponHandler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.POST("/coupons/apply", h.ApplyCoupon)

	adminRoutes := admin.Group("/coupons")
	{
		adminRoutes.GET("", h.ListCoupons)
		adminRoutes.POST("", h.CreateCoupon)
		adminRoutes.PUT("/:id", h.UpdateCoupon)
		adminRoutes.DELETE("/:id", h.DeleteCoupon)
		adminRoutes.PUT("/:id/featured", h.SetFeatured)
	}
}

func (h *CouponHandler) ApplyCoupon(c *gin.Context) {
	var req domain.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "couponCode is required"})
		return
	}

	applied, err := h.couponService.Apply(c.Request.Context(), req.CouponCode)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
		case errors.Is(err, service.ErrCouponInactive), errors.Is(err, service.ErrCouponExpired):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logger.Error("ApplyCoupon Hdl: unhandled service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to apply coupon"})
		}
		return
	}

	c.JSON(http.StatusOK, applied)
}

func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.List(c.Request.Context())
	if err != nil {
		logger.Error("ListCoupons Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list coupons"})
		return
	}
	c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req domain.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	coupon, err := h.couponService.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDiscountValue):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, repository.ErrCouponConflict):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			logger.Error("CreateCoupon Hdl: service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create coupon"})
		}
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	var req domain.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	coupon, err := h.couponService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
		case errors.Is(err, service.ErrInvalidDiscountValue):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logger.Error("UpdateCoupon Hdl: service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to update coupon"})
		}
		return
	}

	c.JSON(http.StatusOK, coupon)
}

func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	err := h.couponService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
			return
		}
		logger.Error("DeleteCoupon Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to delete coupon"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "coupon deleted"})
}

func (h *CouponHandler) SetFeatured(c *gin.Context) {
	err := h.couponService.SetFeatured(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCouponNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
			return
		}
		logger.Error("SetFeatured Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to set featured coupon"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "coupon featured"})
}

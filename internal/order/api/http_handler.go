package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/auth"
	couponrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/repository"
	couponservice "github.com/cyclebazaar/cycle-bazaar-go/internal/coupon/service"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/service"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	productrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/product/repository"
	productservice "github.com/cyclebazaar/cycle-bazaar-go/internal/product/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(os service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	orderRoutes := authed.Group("/orders")
	{
		orderRoutes.POST("", h.CreateOrder)
		orderRoutes.GET("", h.ListOrders)
		orderRoutes.GET("/:id", h.GetOrder)
		orderRoutes.PUT("/:id/pay", h.MarkPaid)
		orderRoutes.PUT("/:id/cancel", h.RequestCancellation)
	}

	adminRoutes := admin.Group("/orders")
	{
		adminRoutes.PUT("/:id/status", h.UpdateStatus)
		adminRoutes.PUT("/:id/manage-cancellation", h.ManageCancellation)
	}
}

// respondError memetakan sentinel error service/repo ke status HTTP.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
	case errors.Is(err, service.ErrNotOrderOwner):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, repository.ErrStaleOrderStatus):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, repository.ErrOrderAlreadyPaid),
		errors.Is(err, couponrepo.ErrCouponNotFound),
		errors.Is(err, couponservice.ErrCouponInactive),
		errors.Is(err, couponservice.ErrCouponExpired),
		errors.Is(err, productrepo.ErrProductNotFound),
		errors.Is(err, productservice.ErrVariantNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		logger.Error("Order Hdl: unhandled service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), principal.UserID, req, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err, "failed to create order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	var (
		orders []domain.Order
		err    error
	)
	if principal.IsAdmin {
		orders, err = h.orderService.ListAllOrders(c.Request.Context())
	} else {
		orders, err = h.orderService.ListOrdersForUser(c.Request.Context(), principal.UserID)
	}
	if err != nil {
		respondError(c, err, "failed to list orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"), principal.UserID, principal.IsAdmin)
	if err != nil {
		respondError(c, err, "failed to get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) MarkPaid(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	var req domain.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), c.Param("id"), principal.UserID, req)
	if err != nil {
		respondError(c, err, "failed to mark order as paid")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RequestCancellation(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	var req domain.RequestCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "reason is required"})
		return
	}

	order, err := h.orderService.RequestCancellation(c.Request.Context(), c.Param("id"), principal.UserID, req.Reason)
	if err != nil {
		respondError(c, err, "failed to request cancellation")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required"})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "failed to update order status")
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ManageCancellation(c *gin.Context) {
	var req domain.ManageCancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "action must be approve or reject"})
		return
	}

	order, err := h.orderService.ResolveCancellation(c.Request.Context(), c.Param("id"), req.Action)
	if err != nil {
		respondError(c, err, "failed to resolve cancellation")
		return
	}

	c.JSON(http.StatusOK, order)
}

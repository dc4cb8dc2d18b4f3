package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/auth"
	orderrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/service"
)

type ReturnHandler struct {
	returnService service.ReturnService
}

func NewReturnHandler(rs service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: rs}
}

// RegisterRoutes memasang route retur: request untuk user login, review untuk admin.
func (h *ReturnHandler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.POST("/returns/request", h.RequestReturn)

	adminRoutes := admin.Group("/returns")
	{
		adminRoutes.GET("", h.ListReturns)
		adminRoutes.PUT("/:id/status", h.ResolveReturn)
	}
}

func (h *ReturnHandler) RequestReturn(c *gin.Context) {
	principal := auth.PrincipalFromContext(c)

	var req domain.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload: " + err.Error()})
		return
	}

	ret, err := h.returnService.RequestReturn(c.Request.Context(), principal.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, orderrepo.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		case errors.Is(err, service.ErrNotOrderOwner):
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrReturnAlreadyRequested):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		case errors.Is(err, service.ErrOrderNotReturnable),
			errors.Is(err, service.ErrReturnWindowClosed),
			errors.Is(err, service.ErrBankDetailsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			logger.Error("RequestReturn Hdl: unhandled service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to request return"})
		}
		return
	}

	c.JSON(http.StatusCreated, ret)
}

func (h *ReturnHandler) ListReturns(c *gin.Context) {
	returns, err := h.returnService.List(c.Request.Context())
	if err != nil {
		logger.Error("ListReturns Hdl: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list returns"})
		return
	}
	c.JSON(http.StatusOK, returns)
}

func (h *ReturnHandler) ResolveReturn(c *gin.Context) {
	var req domain.ResolveReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required"})
		return
	}

	ret, err := h.returnService.ResolveReturn(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReturnNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "return request not found"})
		case errors.Is(err, service.ErrInvalidReturnStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		case errors.Is(err, orderrepo.ErrStaleOrderStatus):
			c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
		default:
			logger.Error("ResolveReturn Hdl: unhandled service error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to resolve return"})
		}
		return
	}

	c.JSON(http.StatusOK, ret)
}

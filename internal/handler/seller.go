package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/middleware"
	"github.com/kaumahan/harvest-market-api/internal/service"
)

type SellerHandler struct {
	sellerService *service.SellerService
	orderService  *service.OrderService
}

func NewSellerHandler(sellerService *service.SellerService, orderService *service.OrderService) *SellerHandler {
	return &SellerHandler{sellerService: sellerService, orderService: orderService}
}

func (h *SellerHandler) Dashboard(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	resp, err := h.sellerService.Dashboard(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SellerHandler) ListOrders(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	resp, err := h.orderService.ListBySeller(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SellerHandler) UpdateOrderStatus(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.orderService.UpdateStatus(c.Request.Context(), sellerID, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, service.ErrOrderAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown order status"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "status transition not allowed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

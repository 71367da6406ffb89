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

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Checkout converts the buyer's cart into orders, one per seller.
func (h *OrderHandler) Checkout(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.orderService.CheckoutCart(c.Request.Context(), buyerID, req)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// DirectCheckout orders a single product without touching the cart. A
// missing quantity means one.
func (h *OrderHandler) DirectCheckout(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	var req dto.DirectCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	resp, err := h.orderService.CheckoutDirect(c.Request.Context(), buyerID, req)
	if err != nil {
		h.writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	resp, err := h.orderService.ListByBuyer(c.Request.Context(), buyerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	accountID := middleware.GetAccountID(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
		return
	}

	resp, err := h.orderService.Get(c.Request.Context(), accountID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if errors.Is(err, service.ErrOrderAccessDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, service.ErrAddressRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "shipping address is required"})
	case errors.Is(err, service.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "product not available"})
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
	case errors.Is(err, service.ErrNoSeller):
		c.JSON(http.StatusConflict, gin.H{"error": "no seller found for this product"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

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

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) AddItem(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cartService.Add(c.Request.Context(), buyerID, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrProductUnavailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not available"})
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart item ID"})
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), buyerID, itemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	buyerID := middleware.GetAccountID(c)

	resp, err := h.cartService.Get(c.Request.Context(), buyerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

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

type ProductHandler struct {
	catalogService *service.CatalogService
}

func NewProductHandler(catalogService *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

func (h *ProductHandler) Create(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	var req dto.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, closeImage, err := openUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer closeImage()

	resp, err := h.catalogService.Create(c.Request.Context(), sellerID, req, image)
	if err != nil {
		h.writeProductError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.catalogService.List(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	resp, err := h.catalogService.Get(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, closeImage, err := openUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer closeImage()

	resp, err := h.catalogService.Update(c.Request.Context(), sellerID, productID, req, image)
	if err != nil {
		h.writeProductError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	sellerID := middleware.GetAccountID(c)

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	if err := h.catalogService.Delete(c.Request.Context(), sellerID, productID); err != nil {
		h.writeProductError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) writeProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, service.ErrNotProductOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the product owner"})
	case errors.Is(err, service.ErrSellerNotApproved):
		c.JSON(http.StatusForbidden, gin.H{"error": "seller approval pending"})
	case errors.Is(err, service.ErrImageRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "product image is required"})
	case errors.Is(err, service.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a positive number"})
	case errors.Is(err, service.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
	case errors.Is(err, service.ErrInvalidUnit):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown unit"})
	case errors.Is(err, service.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the size limit"})
	case errors.Is(err, service.ErrFileTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
	case errors.Is(err, service.ErrProductHasOrders):
		c.JSON(http.StatusConflict, gin.H{"error": "product has orders and cannot be deleted"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

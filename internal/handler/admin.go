package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kaumahan/harvest-market-api/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	resp, err := h.adminService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PendingSellers(c *gin.Context) {
	sellers, err := h.adminService.PendingSellers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sellers": sellers})
}

func (h *AdminHandler) ApproveSeller(c *gin.Context) {
	h.setSellerApproval(c, true)
}

func (h *AdminHandler) RejectSeller(c *gin.Context) {
	h.setSellerApproval(c, false)
}

func (h *AdminHandler) setSellerApproval(c *gin.Context, approve bool) {
	sellerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seller ID"})
		return
	}

	var resp interface{}
	if approve {
		resp, err = h.adminService.ApproveSeller(c.Request.Context(), sellerID)
	} else {
		resp, err = h.adminService.RejectSeller(c.Request.Context(), sellerID)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrNotSeller):
			c.JSON(http.StatusBadRequest, gin.H{"error": "account is not a seller"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ApproveAllSellers(c *gin.Context) {
	resp, err := h.adminService.ApproveAllSellers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportOrders streams the order book as an xlsx attachment.
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	file, err := h.adminService.ExportOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

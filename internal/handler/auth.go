package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles the multipart registration form. Sellers attach
// their business permit as the "business_permit" file field.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	permit, closePermit, err := openUpload(c, "business_permit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read business permit"})
		return
	}
	defer closePermit()

	resp, err := h.authService.Register(c.Request.Context(), req, permit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, service.ErrBusinessFieldsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "business name and permit are required for sellers"})
		case errors.Is(err, service.ErrInvalidCoordinates):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude or longitude"})
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the size limit"})
		case errors.Is(err, service.ErrFileTypeNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file type not allowed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		case errors.Is(err, service.ErrSellerPendingApproval):
			c.JSON(http.StatusForbidden, gin.H{"error": "seller account pending approval"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// openUpload reads an optional multipart file field. It returns a nil
// upload when the field is absent; the caller owns the returned close.
func openUpload(c *gin.Context, field string) (*dto.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUploadHeader(header)
}

func openUploadHeader(header *multipart.FileHeader) (*dto.FileUpload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	upload := &dto.FileUpload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      f,
	}
	return upload, func() { f.Close() }, nil
}

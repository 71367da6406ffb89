package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

// FileUpload carries a multipart file into the service layer, which owns
// size and extension validation.
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// --- Auth ---

// RegisterRequest binds the multipart registration form. Latitude and
// longitude arrive as strings and are parsed in the service so a bad
// coordinate is reported like any other field error.
type RegisterRequest struct {
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
	FullName        string `form:"full_name" binding:"required"`
	PhoneNumber     string `form:"phone_number" binding:"required"`
	Address         string `form:"address" binding:"required"`
	ShippingAddress string `form:"shipping_address"`
	Role            string `form:"role" binding:"required,oneof=buyer seller"`
	BusinessName    string `form:"business_name"`
	Latitude        string `form:"latitude"`
	Longitude       string `form:"longitude"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number"`
	Address      string    `json:"address"`
	Role         model.Role `json:"role"`
	BusinessName *string   `json:"business_name,omitempty"`
	IsApproved   bool      `json:"is_approved"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterResponse struct {
	Account AccountResponse `json:"account"`
	Message string          `json:"message"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Account AccountResponse `json:"account"`
}

// --- Catalog ---

type CreateProductRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Unit        string `form:"unit" binding:"required"`
}

// UpdateProductRequest repeats the create fields; the image alone is
// optional on update and the stored one is kept when it is omitted.
type UpdateProductRequest struct {
	Name        string `form:"name" binding:"required"`
	Description string `form:"description" binding:"required"`
	Price       string `form:"price" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Unit        string `form:"unit" binding:"required"`
}

type ListProductsRequest struct {
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=100"`
	Query string `form:"q"`
}

type ProductResponse struct {
	ID            uuid.UUID             `json:"id"`
	SellerID      uuid.UUID             `json:"seller_id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         decimal.Decimal       `json:"price"`
	Category      model.ProductCategory `json:"category"`
	Unit          model.ProductUnit     `json:"unit"`
	ImageURL      string                `json:"image_url"`
	IsActive      bool                  `json:"is_active"`
	AverageRating *decimal.Decimal      `json:"average_rating"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type ProductDetailResponse struct {
	Product ProductResponse  `json:"product"`
	Reviews []ReviewResponse `json:"reviews"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID        uuid.UUID         `json:"id"`
	ProductID uuid.UUID         `json:"product_id"`
	Name      string            `json:"name"`
	Unit      model.ProductUnit `json:"unit"`
	UnitPrice decimal.Decimal   `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	LineTotal decimal.Decimal   `json:"line_total"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// --- Orders ---

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
}

type DirectCheckoutRequest struct {
	ProductID       uuid.UUID `json:"product_id" binding:"required"`
	Quantity        int       `json:"quantity"`
	ShippingAddress string    `json:"shipping_address"`
	PaymentMethod   string    `json:"payment_method"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	BuyerID         uuid.UUID           `json:"buyer_id"`
	SellerID        uuid.UUID           `json:"seller_id"`
	Status          model.OrderStatus   `json:"status"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress string              `json:"shipping_address"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CheckoutResponse lists the created orders: one per seller represented
// in the cart, exactly one for a direct checkout.
type CheckoutResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// --- Reviews ---

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

type ModerateReviewRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// --- Seller dashboard ---

type SellerDashboardResponse struct {
	Products      []ProductResponse `json:"products"`
	RecentOrders  []OrderResponse   `json:"recent_orders"`
	RecentReviews []ReviewResponse  `json:"recent_reviews"`
}

// --- Admin ---

type AdminDashboardResponse struct {
	TotalUsers      int `json:"total_users"`
	TotalBuyers     int `json:"total_buyers"`
	TotalSellers    int `json:"total_sellers"`
	ApprovedSellers int `json:"approved_sellers"`
	PendingSellers  int `json:"pending_sellers"`

	TotalProducts    int `json:"total_products"`
	ActiveProducts   int `json:"active_products"`
	InactiveProducts int `json:"inactive_products"`

	TotalOrders    int                       `json:"total_orders"`
	OrdersByStatus map[model.OrderStatus]int `json:"orders_by_status"`
	TotalRevenue   decimal.Decimal           `json:"total_revenue"`

	TopProducts []TopProduct `json:"top_products"`
	TopSellers  []TopSeller  `json:"top_sellers"`
}

type TopProduct struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	OrderCount int       `json:"order_count"`
}

type TopSeller struct {
	SellerID uuid.UUID       `json:"seller_id"`
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type BulkApproveResponse struct {
	Approved int64 `json:"approved"`
}

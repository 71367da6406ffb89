package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats is the read-only aggregate view behind the admin dashboard.
type DashboardStats struct {
	TotalUsers      int
	TotalBuyers     int
	TotalSellers    int
	ApprovedSellers int
	PendingSellers  int

	TotalProducts    int
	ActiveProducts   int
	InactiveProducts int

	TotalOrders    int
	OrdersByStatus map[OrderStatus]int

	// Sum of total_amount over delivered orders.
	TotalRevenue decimal.Decimal

	TopProducts []ProductOrderCount
	TopSellers  []SellerRevenue
}

type ProductOrderCount struct {
	ProductID  uuid.UUID
	Name       string
	OrderCount int
}

type SellerRevenue struct {
	SellerID uuid.UUID
	Name     string
	Revenue  decimal.Decimal
}

// OrderExportRow is one spreadsheet line of the admin order export.
type OrderExportRow struct {
	OrderID         uuid.UUID
	BuyerEmail      string
	SellerEmail     string
	Status          OrderStatus
	PaymentMethod   string
	ShippingAddress string
	TotalAmount     decimal.Decimal
	ItemCount       int
	CreatedAt       time.Time
}

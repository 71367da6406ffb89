package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// orderTransitions is the forward-only status machine. Delivered and
// cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const PaymentMethodCOD = "COD"

// Order is an immutable record of a checkout. ShippingAddress is a
// snapshot taken at checkout time and TotalAmount is frozen at creation.
type Order struct {
	ID              uuid.UUID
	BuyerID         uuid.UUID
	SellerID        uuid.UUID
	Status          OrderStatus
	PaymentMethod   string
	ShippingAddress string
	TotalAmount     decimal.Decimal
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem captures quantity and unit price at order time. Price is
// never recomputed from the live product.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderPlacedMessage is published after a checkout commits and consumed
// by the notification worker.
type OrderPlacedMessage struct {
	OrderID  uuid.UUID       `json:"order_id"`
	BuyerID  uuid.UUID       `json:"buyer_id"`
	SellerID uuid.UUID       `json:"seller_id"`
	Total    decimal.Decimal `json:"total"`
}

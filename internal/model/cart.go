package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem holds at most one row per (buyer, product) pair.
type CartItem struct {
	ID        uuid.UUID
	BuyerID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLine is a cart row joined with the product fields needed to price
// and check out the line.
type CartLine struct {
	Item          CartItem
	ProductName   string
	UnitPrice     decimal.Decimal
	Unit          ProductUnit
	SellerID      uuid.UUID
	ProductActive bool
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Item.Quantity)))
}

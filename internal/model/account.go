package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleBuyer, RoleSeller:
		return Role(s), true
	}
	return "", false
}

// Account is the single user entity for buyers, sellers and staff.
// Seller-only fields are pointers and stay nil for buyers.
type Account struct {
	ID                uuid.UUID
	Email             string
	PasswordHash      string
	FullName          string
	PhoneNumber       string
	Address           string
	ShippingAddress   string
	Role              Role
	BusinessName      *string
	BusinessPermitKey *string
	Latitude          *decimal.Decimal
	Longitude         *decimal.Decimal
	IsApproved        bool
	IsStaff           bool
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (a *Account) IsBuyer() bool  { return a.Role == RoleBuyer }
func (a *Account) IsSeller() bool { return a.Role == RoleSeller }

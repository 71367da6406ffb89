package model

import (
	"time"

	"github.com/google/uuid"
)

// RatingReview holds at most one row per (buyer, product) pair;
// resubmitting replaces rating and comment. Moderation flips IsApproved
// but never deletes the row.
type RatingReview struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	BuyerID    uuid.UUID
	Rating     int
	Comment    string
	IsApproved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

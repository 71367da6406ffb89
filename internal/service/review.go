package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

var (
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrReviewNotFound = errors.New("review not found")
)

type ReviewService struct {
	reviews     repository.ReviewRepository
	products    repository.ProductRepository
	redisClient *redis.Client
}

func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, redisClient *redis.Client) *ReviewService {
	return &ReviewService{reviews: reviews, products: products, redisClient: redisClient}
}

// Submit creates the buyer's review of a product, or overwrites their
// existing one. A resubmitted review stays approved; moderation only
// hides reviews after the fact.
func (s *ReviewService) Submit(ctx context.Context, buyerID, productID uuid.UUID, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	review := &model.RatingReview{
		ProductID:  productID,
		BuyerID:    buyerID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: true,
	}
	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	s.invalidateProductCache(ctx, productID)
	resp := toReviewResponse(review)
	return &resp, nil
}

// ListApproved returns the reviews shown on a product page.
func (s *ReviewService) ListApproved(ctx context.Context, productID uuid.UUID) ([]dto.ReviewResponse, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	reviews, err := s.reviews.ListApprovedByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return lo.Map(reviews, func(r model.RatingReview, _ int) dto.ReviewResponse {
		return toReviewResponse(&r)
	}), nil
}

// Moderate sets a review's approval flag. Hiding a review removes it
// from the product page and from the average rating.
func (s *ReviewService) Moderate(ctx context.Context, reviewID uuid.UUID, approved bool) (*dto.ReviewResponse, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}

	if err := s.reviews.SetApproval(ctx, reviewID, approved); err != nil {
		return nil, fmt.Errorf("set review approval: %w", err)
	}
	review.IsApproved = approved

	s.invalidateProductCache(ctx, review.ProductID)
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *ReviewService) invalidateProductCache(ctx context.Context, productID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, productCacheKey(productID)).Err(); err != nil {
		slog.Warn("failed to invalidate product cache", "product_id", productID, "error", err)
	}
}

func toReviewResponse(r *model.RatingReview) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		BuyerID:    r.BuyerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

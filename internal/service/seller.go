package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
	"github.com/kaumahan/harvest-market-api/internal/storage"
)

const dashboardRecentLimit = 10

type SellerService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	reviews  repository.ReviewRepository
	store    storage.Storage
}

func NewSellerService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	reviews repository.ReviewRepository,
	store storage.Storage,
) *SellerService {
	return &SellerService{products: products, orders: orders, reviews: reviews, store: store}
}

// Dashboard assembles the seller's home view: their full product list
// plus the ten most recent orders and reviews against those products.
func (s *SellerService) Dashboard(ctx context.Context, sellerID uuid.UUID) (*dto.SellerDashboardResponse, error) {
	products, err := s.products.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}

	orders, err := s.orders.ListBySeller(ctx, sellerID, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}

	reviews, err := s.reviews.ListBySeller(ctx, sellerID, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list seller reviews: %w", err)
	}

	return &dto.SellerDashboardResponse{
		Products: lo.Map(products, func(p model.Product, _ int) dto.ProductResponse {
			return toProductResponse(&p, s.store, nil)
		}),
		RecentOrders: lo.Map(orders, func(o model.Order, _ int) dto.OrderResponse {
			return toOrderResponse(&o)
		}),
		RecentReviews: lo.Map(reviews, func(r model.RatingReview, _ int) dto.ReviewResponse {
			return toReviewResponse(&r)
		}),
	}, nil
}

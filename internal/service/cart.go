package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

var (
	ErrProductUnavailable = errors.New("product is unavailable")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrCartItemNotFound   = errors.New("cart item not found")
)

type CartService struct {
	cart     repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(cart repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{cart: cart, products: products}
}

// Add upserts the (buyer, product) row. A repeated add replaces the
// stored quantity with the submitted one rather than accumulating.
func (s *CartService) Add(ctx context.Context, buyerID, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return ErrProductUnavailable
	}

	return s.cart.Upsert(ctx, &model.CartItem{
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (s *CartService) Remove(ctx context.Context, buyerID, itemID uuid.UUID) error {
	if err := s.cart.Delete(ctx, itemID, buyerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Get prices the cart fresh on every read; totals are never cached.
func (s *CartService) Get(ctx context.Context, buyerID uuid.UUID) (*dto.CartResponse, error) {
	lines, err := s.cart.ListLines(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	items := lo.Map(lines, func(l model.CartLine, _ int) dto.CartItemResponse {
		return dto.CartItemResponse{
			ID:        l.Item.ID,
			ProductID: l.Item.ProductID,
			Name:      l.ProductName,
			Unit:      l.Unit,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Item.Quantity,
			LineTotal: l.LineTotal(),
		}
	})
	total := lo.Reduce(lines, func(acc decimal.Decimal, l model.CartLine, _ int) decimal.Decimal {
		return acc.Add(l.LineTotal())
	}, decimal.Zero)

	return &dto.CartResponse{Items: items, Total: total}, nil
}

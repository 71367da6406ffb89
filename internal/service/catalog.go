package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
	"github.com/kaumahan/harvest-market-api/internal/storage"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrNotProductOwner   = errors.New("product belongs to another seller")
	ErrSellerNotApproved = errors.New("seller account is not approved")
	ErrImageRequired     = errors.New("product image is required")
	ErrInvalidPrice      = errors.New("price must be a positive amount")
	ErrInvalidCategory   = errors.New("unknown product category")
	ErrInvalidUnit       = errors.New("unknown unit of sale")
	ErrProductHasOrders  = errors.New("product is referenced by existing orders")
)

const productCacheTTL = 60 * time.Second

func productCacheKey(id uuid.UUID) string { return "product:" + id.String() }

type CatalogService struct {
	products    repository.ProductRepository
	accounts    repository.AccountRepository
	reviews     repository.ReviewRepository
	store       storage.Storage
	redisClient *redis.Client
}

func NewCatalogService(
	products repository.ProductRepository,
	accounts repository.AccountRepository,
	reviews repository.ReviewRepository,
	store storage.Storage,
	redisClient *redis.Client,
) *CatalogService {
	return &CatalogService{
		products:    products,
		accounts:    accounts,
		reviews:     reviews,
		store:       store,
		redisClient: redisClient,
	}
}

// Create requires an approved, active seller checked against the
// database, not only the token: a revoked seller with a live token still
// may not list products.
func (s *CatalogService) Create(ctx context.Context, sellerID uuid.UUID, req dto.CreateProductRequest, image *dto.FileUpload) (*dto.ProductResponse, error) {
	seller, err := s.accounts.GetByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("get seller: %w", err)
	}
	if seller == nil || !seller.IsSeller() || !seller.IsApproved || !seller.IsActive {
		return nil, ErrSellerNotApproved
	}

	fields, err := parseProductFields(req.Price, req.Category, req.Unit)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, ErrImageRequired
	}
	if err := validateUpload(image, imageExtensions); err != nil {
		return nil, err
	}

	key := uploadKey("products", image.Filename)
	if err := s.store.Save(ctx, key, image.Reader, image.Size, image.ContentType); err != nil {
		return nil, fmt.Errorf("save product image: %w", err)
	}

	product := &model.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       fields.price,
		Category:    fields.category,
		Unit:        fields.unit,
		ImageKey:    key,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	resp := toProductResponse(product, s.store, nil)
	return &resp, nil
}

// Get returns an active product with its approved reviews and average
// rating. The assembled response is cached briefly in Redis.
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductDetailResponse, error) {
	cacheKey := productCacheKey(id)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductDetailResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	avg, err := s.products.AverageRating(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	reviews, err := s.reviews.ListApprovedByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	resp := &dto.ProductDetailResponse{
		Product: toProductResponse(product, s.store, avgPtr(avg)),
		Reviews: lo.Map(reviews, func(r model.RatingReview, _ int) dto.ReviewResponse {
			return toReviewResponse(&r)
		}),
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}
	return resp, nil
}

// List is the buyer-facing browse: active products only, filtered by a
// free-text query over name, description and category.
func (s *CatalogService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	offset := (req.Page - 1) * req.Limit
	products, total, err := s.products.List(ctx, req.Query, true, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := lo.Map(products, func(p model.Product, _ int) dto.ProductResponse {
		return toProductResponse(&p, s.store, nil)
	})
	return &dto.ProductListResponse{Products: items, Total: total, Page: req.Page, Limit: req.Limit}, nil
}

// Update is owner-only. An omitted image keeps the stored one; a new
// image replaces it and the old blob is removed best-effort.
func (s *CatalogService) Update(ctx context.Context, sellerID, productID uuid.UUID, req dto.UpdateProductRequest, image *dto.FileUpload) (*dto.ProductResponse, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.SellerID != sellerID {
		return nil, ErrNotProductOwner
	}

	fields, err := parseProductFields(req.Price, req.Category, req.Unit)
	if err != nil {
		return nil, err
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Price = fields.price
	product.Category = fields.category
	product.Unit = fields.unit

	if image != nil {
		if err := validateUpload(image, imageExtensions); err != nil {
			return nil, err
		}
		key := uploadKey("products", image.Filename)
		if err := s.store.Save(ctx, key, image.Reader, image.Size, image.ContentType); err != nil {
			return nil, fmt.Errorf("save product image: %w", err)
		}
		oldKey := product.ImageKey
		product.ImageKey = key
		if oldKey != "" {
			_ = s.store.Delete(ctx, oldKey)
		}
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.invalidateProductCache(ctx, productID)

	avg, err := s.products.AverageRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	resp := toProductResponse(product, s.store, avgPtr(avg))
	return &resp, nil
}

// Delete is owner-only and refuses to remove a product still referenced
// by order items, which must survive for audit.
func (s *CatalogService) Delete(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if product.SellerID != sellerID {
		return ErrNotProductOwner
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrRowReferenced) {
			return ErrProductHasOrders
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if product.ImageKey != "" {
		_ = s.store.Delete(ctx, product.ImageKey)
	}
	s.invalidateProductCache(ctx, productID)
	return nil
}

func (s *CatalogService) invalidateProductCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, productCacheKey(id))
	}
}

type productFields struct {
	price    decimal.Decimal
	category model.ProductCategory
	unit     model.ProductUnit
}

func parseProductFields(priceStr, categoryStr, unitStr string) (productFields, error) {
	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return productFields{}, ErrInvalidPrice
	}
	category, ok := model.ParseCategory(categoryStr)
	if !ok {
		return productFields{}, ErrInvalidCategory
	}
	unit, ok := model.ParseUnit(unitStr)
	if !ok {
		return productFields{}, ErrInvalidUnit
	}
	return productFields{price: price, category: category, unit: unit}, nil
}

func avgPtr(avg decimal.NullDecimal) *decimal.Decimal {
	if !avg.Valid {
		return nil
	}
	d := avg.Decimal
	return &d
}

func toProductResponse(p *model.Product, store storage.Storage, avg *decimal.Decimal) dto.ProductResponse {
	var imageURL string
	if p.ImageKey != "" {
		imageURL = store.URL(p.ImageKey)
	}
	return dto.ProductResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		Unit:          p.Unit,
		ImageURL:      imageURL,
		IsActive:      p.IsActive,
		AverageRating: avg,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

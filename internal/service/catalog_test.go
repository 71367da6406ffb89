package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

type mockProductRepo struct {
	products   map[uuid.UUID]*model.Product
	referenced map[uuid.UUID]bool
	ratings    map[uuid.UUID]decimal.NullDecimal
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		products:   make(map[uuid.UUID]*model.Product),
		referenced: make(map[uuid.UUID]bool),
		ratings:    make(map[uuid.UUID]decimal.NullDecimal),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return m.products[id], nil
}

func (m *mockProductRepo) List(_ context.Context, query string, activeOnly bool, limit, offset int) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range m.products {
		if activeOnly && !p.IsActive {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProductRepo) ListBySeller(_ context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		if p.SellerID == sellerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.referenced[id] {
		return repository.ErrRowReferenced
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) AverageRating(_ context.Context, productID uuid.UUID) (decimal.NullDecimal, error) {
	return m.ratings[productID], nil
}

type mockReviewRepo struct {
	reviews map[uuid.UUID]*model.RatingReview
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[uuid.UUID]*model.RatingReview)}
}

func (m *mockReviewRepo) Upsert(_ context.Context, review *model.RatingReview) error {
	for _, r := range m.reviews {
		if r.ProductID == review.ProductID && r.BuyerID == review.BuyerID {
			r.Rating = review.Rating
			r.Comment = review.Comment
			review.ID = r.ID
			review.IsApproved = r.IsApproved
			return nil
		}
	}
	review.ID = uuid.New()
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*model.RatingReview, error) {
	return m.reviews[id], nil
}

func (m *mockReviewRepo) ListApprovedByProduct(_ context.Context, productID uuid.UUID) ([]model.RatingReview, error) {
	var out []model.RatingReview
	for _, r := range m.reviews {
		if r.ProductID == productID && r.IsApproved {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepo) ListBySeller(_ context.Context, _ uuid.UUID, _ int) ([]model.RatingReview, error) {
	return nil, nil
}

func (m *mockReviewRepo) SetApproval(_ context.Context, id uuid.UUID, approved bool) error {
	if r, ok := m.reviews[id]; ok {
		r.IsApproved = approved
	}
	return nil
}

func approvedSeller(accounts *mockAccountRepo) *model.Account {
	seller := &model.Account{
		Email: "seller@example.com", Role: model.RoleSeller,
		IsApproved: true, IsActive: true,
	}
	accounts.put(seller)
	return seller
}

func imageUpload() *dto.FileUpload {
	return &dto.FileUpload{
		Filename:    "talong.jpg",
		Size:        2048,
		ContentType: "image/jpeg",
		Reader:      strings.NewReader("img"),
	}
}

func createProductRequest() dto.CreateProductRequest {
	return dto.CreateProductRequest{
		Name:        "Talong",
		Description: "Fresh eggplant",
		Price:       "45.50",
		Category:    "VEGETABLES",
		Unit:        "KG",
	}
}

func TestCatalogService_Create(t *testing.T) {
	accounts := newMockAccountRepo()
	products := newMockProductRepo()
	store := newFakeStorage()
	seller := approvedSeller(accounts)
	svc := NewCatalogService(products, accounts, newMockReviewRepo(), store, nil)

	resp, err := svc.Create(context.Background(), seller.ID, createProductRequest(), imageUpload())
	require.NoError(t, err)
	assert.Equal(t, "Talong", resp.Name)
	assert.Equal(t, model.CategoryVegetables, resp.Category)
	assert.True(t, resp.IsActive)
	assert.True(t, strings.HasPrefix(resp.ImageURL, "/media/products/"))
	assert.Len(t, store.saved, 1)
}

func TestCatalogService_Create_UnapprovedSeller(t *testing.T) {
	accounts := newMockAccountRepo()
	seller := &model.Account{Email: "s@example.com", Role: model.RoleSeller, IsActive: true}
	accounts.put(seller)
	svc := NewCatalogService(newMockProductRepo(), accounts, newMockReviewRepo(), newFakeStorage(), nil)

	_, err := svc.Create(context.Background(), seller.ID, createProductRequest(), imageUpload())
	assert.ErrorIs(t, err, ErrSellerNotApproved)
}

func TestCatalogService_Create_MissingImage(t *testing.T) {
	accounts := newMockAccountRepo()
	seller := approvedSeller(accounts)
	svc := NewCatalogService(newMockProductRepo(), accounts, newMockReviewRepo(), newFakeStorage(), nil)

	_, err := svc.Create(context.Background(), seller.ID, createProductRequest(), nil)
	assert.ErrorIs(t, err, ErrImageRequired)
}

func TestCatalogService_Create_BadFields(t *testing.T) {
	accounts := newMockAccountRepo()
	seller := approvedSeller(accounts)
	svc := NewCatalogService(newMockProductRepo(), accounts, newMockReviewRepo(), newFakeStorage(), nil)

	req := createProductRequest()
	req.Price = "-5"
	_, err := svc.Create(context.Background(), seller.ID, req, imageUpload())
	assert.ErrorIs(t, err, ErrInvalidPrice)

	req = createProductRequest()
	req.Category = "gadgets"
	_, err = svc.Create(context.Background(), seller.ID, req, imageUpload())
	assert.ErrorIs(t, err, ErrInvalidCategory)

	req = createProductRequest()
	req.Unit = "barrel"
	_, err = svc.Create(context.Background(), seller.ID, req, imageUpload())
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestCatalogService_Get_InactiveHidden(t *testing.T) {
	products := newMockProductRepo()
	pid := uuid.New()
	products.products[pid] = &model.Product{ID: pid, Name: "Old", IsActive: false}
	svc := NewCatalogService(products, newMockAccountRepo(), newMockReviewRepo(), newFakeStorage(), nil)

	_, err := svc.Get(context.Background(), pid)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_Update_NotOwner(t *testing.T) {
	products := newMockProductRepo()
	pid := uuid.New()
	products.products[pid] = &model.Product{ID: pid, SellerID: uuid.New(), IsActive: true}
	svc := NewCatalogService(products, newMockAccountRepo(), newMockReviewRepo(), newFakeStorage(), nil)

	_, err := svc.Update(context.Background(), uuid.New(), pid, dto.UpdateProductRequest{
		Name: "X", Description: "Y", Price: "10", Category: "FRUITS", Unit: "PC",
	}, nil)
	assert.ErrorIs(t, err, ErrNotProductOwner)
}

func TestCatalogService_Update_KeepsImageWhenOmitted(t *testing.T) {
	products := newMockProductRepo()
	sellerID := uuid.New()
	pid := uuid.New()
	products.products[pid] = &model.Product{
		ID: pid, SellerID: sellerID, ImageKey: "products/old.jpg", IsActive: true,
	}
	svc := NewCatalogService(products, newMockAccountRepo(), newMockReviewRepo(), newFakeStorage(), nil)

	resp, err := svc.Update(context.Background(), sellerID, pid, dto.UpdateProductRequest{
		Name: "Mango", Description: "Sweet", Price: "120", Category: "FRUITS", Unit: "KG",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/media/products/old.jpg", resp.ImageURL)
}

func TestCatalogService_Delete_ReferencedByOrders(t *testing.T) {
	products := newMockProductRepo()
	sellerID := uuid.New()
	pid := uuid.New()
	products.products[pid] = &model.Product{ID: pid, SellerID: sellerID, IsActive: true}
	products.referenced[pid] = true
	svc := NewCatalogService(products, newMockAccountRepo(), newMockReviewRepo(), newFakeStorage(), nil)

	err := svc.Delete(context.Background(), sellerID, pid)
	assert.ErrorIs(t, err, ErrProductHasOrders)
}

func TestCatalogService_Delete(t *testing.T) {
	products := newMockProductRepo()
	store := newFakeStorage()
	sellerID := uuid.New()
	pid := uuid.New()
	store.saved["products/x.jpg"] = true
	products.products[pid] = &model.Product{
		ID: pid, SellerID: sellerID, ImageKey: "products/x.jpg", IsActive: true,
	}
	svc := NewCatalogService(products, newMockAccountRepo(), newMockReviewRepo(), store, nil)

	require.NoError(t, svc.Delete(context.Background(), sellerID, pid))
	assert.Empty(t, products.products)
	assert.Contains(t, store.deleted, "products/x.jpg")
}

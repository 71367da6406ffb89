package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

func TestSellerService_Dashboard(t *testing.T) {
	products := newMockProductRepo()
	cart := newMockCartRepo(products)
	orders := newMockOrderRepo(cart)
	svc := NewSellerService(products, orders, newMockReviewRepo(), newFakeStorage())

	sellerID := uuid.New()
	activeProduct(products, sellerID, "30")
	activeProduct(products, sellerID, "45")
	activeProduct(products, uuid.New(), "99")

	orders.store(&model.Order{BuyerID: uuid.New(), SellerID: sellerID, Status: model.OrderStatusPending})
	orders.store(&model.Order{BuyerID: uuid.New(), SellerID: uuid.New(), Status: model.OrderStatusPending})

	resp, err := svc.Dashboard(context.Background(), sellerID)
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
	assert.Len(t, resp.RecentOrders, 1)
	assert.Empty(t, resp.RecentReviews)
}

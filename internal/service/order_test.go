package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	// cart is cleared inside the same call in the real repository.
	cart *mockCartRepo
}

func newMockOrderRepo(cart *mockCartRepo) *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order), cart: cart}
}

func (m *mockOrderRepo) store(order *model.Order) {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	m.store(order)
	return nil
}

func (m *mockOrderRepo) CreateFromCart(ctx context.Context, buyerID uuid.UUID, orders []*model.Order) error {
	for _, order := range orders {
		m.store(order)
	}
	if m.cart != nil {
		_ = m.cart.Clear(ctx, buyerID)
	}
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListBySeller(_ context.Context, sellerID uuid.UUID, _ int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.SellerID == sellerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID, sellerID uuid.UUID, from, to model.OrderStatus) error {
	o, ok := m.orders[orderID]
	if !ok || o.SellerID != sellerID || o.Status != from {
		return pgx.ErrNoRows
	}
	o.Status = to
	return nil
}

func (m *mockOrderRepo) ListForExport(_ context.Context) ([]model.OrderExportRow, error) {
	var out []model.OrderExportRow
	for _, o := range m.orders {
		out = append(out, model.OrderExportRow{
			OrderID:     o.ID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			ItemCount:   len(o.Items),
			CreatedAt:   o.CreatedAt,
		})
	}
	return out, nil
}

type checkoutFixture struct {
	svc      *OrderService
	accounts *mockAccountRepo
	products *mockProductRepo
	cart     *mockCartRepo
	orders   *mockOrderRepo
	buyerID  uuid.UUID
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	accounts := newMockAccountRepo()
	products := newMockProductRepo()
	cart := newMockCartRepo(products)
	orders := newMockOrderRepo(cart)

	buyer := &model.Account{
		Email: "buyer@example.com", Role: model.RoleBuyer,
		IsApproved: true, IsActive: true,
	}
	accounts.put(buyer)

	return &checkoutFixture{
		svc:      NewOrderService(orders, cart, products, accounts, nil),
		accounts: accounts,
		products: products,
		cart:     cart,
		orders:   orders,
		buyerID:  buyer.ID,
	}
}

func (f *checkoutFixture) addToCart(t *testing.T, p *model.Product, qty int) {
	t.Helper()
	require.NoError(t, f.cart.Upsert(context.Background(), &model.CartItem{
		BuyerID: f.buyerID, ProductID: p.ID, Quantity: qty,
	}))
}

func TestOrderService_CheckoutCart_SplitsBySeller(t *testing.T) {
	f := newCheckoutFixture(t)

	sellerA := uuid.New()
	sellerB := uuid.New()
	p1 := activeProduct(f.products, sellerA, "10")
	p2 := activeProduct(f.products, sellerA, "20")
	p3 := activeProduct(f.products, sellerB, "5")

	f.addToCart(t, p1, 1)
	f.addToCart(t, p2, 2)
	f.addToCart(t, p3, 3)

	resp, err := f.svc.CheckoutCart(context.Background(), f.buyerID, dto.CheckoutRequest{
		ShippingAddress: "Barangay Uno, Cebu",
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2)

	totals := map[uuid.UUID]decimal.Decimal{}
	for _, o := range resp.Orders {
		assert.Equal(t, model.OrderStatusPending, o.Status)
		assert.Equal(t, model.PaymentMethodCOD, o.PaymentMethod)
		assert.Equal(t, "Barangay Uno, Cebu", o.ShippingAddress)
		totals[o.SellerID] = o.TotalAmount
	}
	assert.True(t, totals[sellerA].Equal(decimal.RequireFromString("50")))
	assert.True(t, totals[sellerB].Equal(decimal.RequireFromString("15")))

	// The cart is emptied in the same operation.
	assert.Empty(t, f.cart.items)
}

func TestOrderService_CheckoutCart_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.CheckoutCart(context.Background(), f.buyerID, dto.CheckoutRequest{
		ShippingAddress: "Somewhere",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderService_CheckoutCart_AddressRequired(t *testing.T) {
	f := newCheckoutFixture(t)
	p := activeProduct(f.products, uuid.New(), "10")
	f.addToCart(t, p, 1)

	_, err := f.svc.CheckoutCart(context.Background(), f.buyerID, dto.CheckoutRequest{
		ShippingAddress: "   ",
	})
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestOrderService_CheckoutCart_InactiveProductFailsWhole(t *testing.T) {
	f := newCheckoutFixture(t)

	p1 := activeProduct(f.products, uuid.New(), "10")
	p2 := activeProduct(f.products, uuid.New(), "20")
	p2.IsActive = false

	f.addToCart(t, p1, 1)
	f.addToCart(t, p2, 1)

	_, err := f.svc.CheckoutCart(context.Background(), f.buyerID, dto.CheckoutRequest{
		ShippingAddress: "Somewhere",
	})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Empty(t, f.orders.orders)
	assert.Len(t, f.cart.items, 2)
}

func TestOrderService_CheckoutDirect(t *testing.T) {
	f := newCheckoutFixture(t)

	seller := &model.Account{
		Email: "seller@example.com", Role: model.RoleSeller,
		IsApproved: true, IsActive: true,
	}
	f.accounts.put(seller)
	p := activeProduct(f.products, seller.ID, "25")

	resp, err := f.svc.CheckoutDirect(context.Background(), f.buyerID, dto.DirectCheckoutRequest{
		ProductID: p.ID, Quantity: 3, ShippingAddress: "Market Road",
	})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.True(t, resp.Orders[0].TotalAmount.Equal(decimal.RequireFromString("75")))
	require.Len(t, resp.Orders[0].Items, 1)
	assert.True(t, resp.Orders[0].Items[0].Price.Equal(p.Price))
}

func TestOrderService_CheckoutDirect_AddressFallsBackToProfile(t *testing.T) {
	f := newCheckoutFixture(t)

	buyer := f.accounts.byID[f.buyerID]
	buyer.ShippingAddress = "Saved Address 42"

	seller := &model.Account{
		Email: "seller@example.com", Role: model.RoleSeller,
		IsApproved: true, IsActive: true,
	}
	f.accounts.put(seller)
	p := activeProduct(f.products, seller.ID, "25")

	resp, err := f.svc.CheckoutDirect(context.Background(), f.buyerID, dto.DirectCheckoutRequest{
		ProductID: p.ID, Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Saved Address 42", resp.Orders[0].ShippingAddress)
}

func TestOrderService_CheckoutDirect_NoAddressAnywhere(t *testing.T) {
	f := newCheckoutFixture(t)

	seller := &model.Account{
		Email: "seller@example.com", Role: model.RoleSeller,
		IsApproved: true, IsActive: true,
	}
	f.accounts.put(seller)
	p := activeProduct(f.products, seller.ID, "25")

	_, err := f.svc.CheckoutDirect(context.Background(), f.buyerID, dto.DirectCheckoutRequest{
		ProductID: p.ID, Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrAddressRequired)
}

func TestOrderService_CheckoutDirect_DeactivatedSeller(t *testing.T) {
	f := newCheckoutFixture(t)

	seller := &model.Account{
		Email: "gone@example.com", Role: model.RoleSeller, IsActive: false,
	}
	f.accounts.put(seller)
	p := activeProduct(f.products, seller.ID, "25")

	_, err := f.svc.CheckoutDirect(context.Background(), f.buyerID, dto.DirectCheckoutRequest{
		ProductID: p.ID, Quantity: 1, ShippingAddress: "X",
	})
	assert.ErrorIs(t, err, ErrNoSeller)
}

func TestOrderService_Get_ParticipantOnly(t *testing.T) {
	f := newCheckoutFixture(t)

	sellerID := uuid.New()
	order := &model.Order{
		BuyerID: f.buyerID, SellerID: sellerID,
		Status: model.OrderStatusPending, TotalAmount: decimal.NewFromInt(10),
	}
	f.orders.store(order)

	_, err := f.svc.Get(context.Background(), f.buyerID, order.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), sellerID, order.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newCheckoutFixture(t)

	sellerID := uuid.New()
	order := &model.Order{
		BuyerID: f.buyerID, SellerID: sellerID, Status: model.OrderStatusPending,
	}
	f.orders.store(order)

	resp, err := f.svc.UpdateStatus(context.Background(), sellerID, order.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, resp.Status)
}

func TestOrderService_UpdateStatus_IllegalTransition(t *testing.T) {
	f := newCheckoutFixture(t)

	sellerID := uuid.New()
	order := &model.Order{
		BuyerID: f.buyerID, SellerID: sellerID, Status: model.OrderStatusDelivered,
	}
	f.orders.store(order)

	_, err := f.svc.UpdateStatus(context.Background(), sellerID, order.ID, "pending")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(context.Background(), sellerID, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), "refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdateStatus_NotOwningSeller(t *testing.T) {
	f := newCheckoutFixture(t)

	order := &model.Order{
		BuyerID: f.buyerID, SellerID: uuid.New(), Status: model.OrderStatusPending,
	}
	f.orders.store(order)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), order.ID, "confirmed")
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/dto"
	"github.com/kaumahan/harvest-market-api/internal/model"
	"github.com/kaumahan/harvest-market-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAddressRequired   = errors.New("shipping address is required")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
	ErrNoSeller          = errors.New("no seller found for this product")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

// orderPlacedQueue receives one message per committed order; the
// notification worker consumes it.
const orderPlacedQueue = "orders.placed"

type OrderService struct {
	orders   repository.OrderRepository
	cart     repository.CartRepository
	products repository.ProductRepository
	accounts repository.AccountRepository
	amqpCh   *amqp.Channel
}

func NewOrderService(
	orders repository.OrderRepository,
	cart repository.CartRepository,
	products repository.ProductRepository,
	accounts repository.AccountRepository,
	amqpCh *amqp.Channel,
) *OrderService {
	return &OrderService{orders: orders, cart: cart, products: products, accounts: accounts, amqpCh: amqpCh}
}

// CheckoutCart converts the whole cart into orders, one per seller
// represented in it, freezing current product prices into the line
// items. The conversion and the cart clear commit in one transaction;
// an unavailable product fails the entire checkout with no partial
// order.
func (s *OrderService) CheckoutCart(ctx context.Context, buyerID uuid.UUID, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, ErrAddressRequired
	}

	lines, err := s.cart.ListLines(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range lines {
		if !l.ProductActive {
			return nil, ErrProductUnavailable
		}
	}

	payment := paymentOrDefault(req.PaymentMethod)

	// Group lines by seller preserving cart order, so the response is
	// deterministic.
	var sellerIDs []uuid.UUID
	bySeller := make(map[uuid.UUID][]model.CartLine)
	for _, l := range lines {
		if _, seen := bySeller[l.SellerID]; !seen {
			sellerIDs = append(sellerIDs, l.SellerID)
		}
		bySeller[l.SellerID] = append(bySeller[l.SellerID], l)
	}

	orders := make([]*model.Order, 0, len(sellerIDs))
	for _, sellerID := range sellerIDs {
		group := bySeller[sellerID]
		items := lo.Map(group, func(l model.CartLine, _ int) model.OrderItem {
			return model.OrderItem{
				ProductID: l.Item.ProductID,
				Quantity:  l.Item.Quantity,
				Price:     l.UnitPrice,
			}
		})
		total := lo.Reduce(group, func(acc decimal.Decimal, l model.CartLine, _ int) decimal.Decimal {
			return acc.Add(l.LineTotal())
		}, decimal.Zero)

		orders = append(orders, &model.Order{
			BuyerID:         buyerID,
			SellerID:        sellerID,
			Status:          model.OrderStatusPending,
			PaymentMethod:   payment,
			ShippingAddress: address,
			TotalAmount:     total,
			Items:           items,
		})
	}

	if err := s.orders.CreateFromCart(ctx, buyerID, orders); err != nil {
		return nil, fmt.Errorf("checkout cart: %w", err)
	}

	for _, order := range orders {
		s.publishOrderPlaced(ctx, order)
	}
	return &dto.CheckoutResponse{Orders: toOrderResponses(orders)}, nil
}

// CheckoutDirect places a single-item order bypassing the cart. The
// shipping address falls back to the buyer's profile default; failure
// causes are reported distinctly rather than through one generic error.
func (s *OrderService) CheckoutDirect(ctx context.Context, buyerID uuid.UUID, req dto.DirectCheckoutRequest) (*dto.CheckoutResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductUnavailable
	}

	seller, err := s.accounts.GetByID(ctx, product.SellerID)
	if err != nil {
		return nil, fmt.Errorf("get seller: %w", err)
	}
	if seller == nil || !seller.IsActive {
		return nil, ErrNoSeller
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		buyer, err := s.accounts.GetByID(ctx, buyerID)
		if err != nil {
			return nil, fmt.Errorf("get buyer: %w", err)
		}
		if buyer != nil {
			address = strings.TrimSpace(buyer.ShippingAddress)
			if address == "" {
				address = strings.TrimSpace(buyer.Address)
			}
		}
	}
	if address == "" {
		return nil, ErrAddressRequired
	}

	order := &model.Order{
		BuyerID:         buyerID,
		SellerID:        product.SellerID,
		Status:          model.OrderStatusPending,
		PaymentMethod:   paymentOrDefault(req.PaymentMethod),
		ShippingAddress: address,
		TotalAmount:     product.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Items: []model.OrderItem{{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.Price,
		}},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("direct checkout: %w", err)
	}

	s.publishOrderPlaced(ctx, order)
	return &dto.CheckoutResponse{Orders: toOrderResponses([]*model.Order{order})}, nil
}

// Get returns an order to either participant, buyer or owning seller.
func (s *OrderService) Get(ctx context.Context, accountID, orderID uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.BuyerID != accountID && order.SellerID != accountID {
		return nil, ErrOrderAccessDenied
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uuid.UUID) (*dto.OrderListResponse, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list buyer orders: %w", err)
	}
	return toOrderListResponse(orders), nil
}

func (s *OrderService) ListBySeller(ctx context.Context, sellerID uuid.UUID) (*dto.OrderListResponse, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID, 0)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return toOrderListResponse(orders), nil
}

// UpdateStatus lets the owning seller advance an order along the
// forward-only machine pending→confirmed→shipped→delivered, or cancel a
// pending order. Anything else is rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, sellerID, orderID uuid.UUID, statusStr string) (*dto.OrderResponse, error) {
	next, ok := model.ParseOrderStatus(statusStr)
	if !ok {
		return nil, ErrInvalidStatus
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.SellerID != sellerID {
		return nil, ErrOrderAccessDenied
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.orders.UpdateStatus(ctx, orderID, sellerID, order.Status, next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with a concurrent transition.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order.Status = next
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.OrderPlacedMessage{
		OrderID:  order.ID,
		BuyerID:  order.BuyerID,
		SellerID: order.SellerID,
		Total:    order.TotalAmount,
	})
	_ = s.amqpCh.PublishWithContext(ctx, "", orderPlacedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}

func paymentOrDefault(method string) string {
	if method == "" {
		return model.PaymentMethodCOD
	}
	return method
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	items := lo.Map(order.Items, func(item model.OrderItem, _ int) dto.OrderItemResponse {
		return dto.OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		}
	})
	return dto.OrderResponse{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		SellerID:        order.SellerID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		ShippingAddress: order.ShippingAddress,
		TotalAmount:     order.TotalAmount,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func toOrderResponses(orders []*model.Order) []dto.OrderResponse {
	return lo.Map(orders, func(o *model.Order, _ int) dto.OrderResponse {
		return toOrderResponse(o)
	})
}

func toOrderListResponse(orders []model.Order) *dto.OrderListResponse {
	items := lo.Map(orders, func(o model.Order, _ int) dto.OrderResponse {
		return toOrderResponse(&o)
	})
	return &dto.OrderListResponse{Orders: items, Total: len(items)}
}

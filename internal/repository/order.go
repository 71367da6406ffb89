package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

type OrderRepository interface {
	// Create inserts an order and its items in one transaction.
	Create(ctx context.Context, order *model.Order) error
	// CreateFromCart inserts every order (one per seller in the cart) and
	// clears the buyer's cart rows in the same transaction, so a checkout
	// either fully converts the cart or leaves it untouched.
	CreateFromCart(ctx context.Context, buyerID uuid.UUID, orders []*model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]model.Order, error)
	// UpdateStatus is scoped to the owning seller and to the expected
	// current status, so concurrent updates cannot skip a transition.
	UpdateStatus(ctx context.Context, orderID, sellerID uuid.UUID, from, to model.OrderStatus) error
	ListForExport(ctx context.Context) ([]model.OrderExportRow, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func insertOrderTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	order.ID = uuid.New()
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (id, buyer_id, seller_id, status, payment_method, shipping_address,
			total_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.BuyerID, order.SellerID, order.Status, order.PaymentMethod,
		order.ShippingAddress, order.TotalAmount,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4, $5)`,
			order.Items[i].ID, order.ID, order.Items[i].ProductID,
			order.Items[i].Quantity, order.Items[i].Price,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertOrderTx(ctx, tx, order); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *pgOrderRepo) CreateFromCart(ctx context.Context, buyerID uuid.UUID, orders []*model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, order := range orders {
		if err := insertOrderTx(ctx, tx, order); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, buyerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, buyer_id, seller_id, status, payment_method, shipping_address,
			total_amount, created_at, updated_at
		 FROM orders WHERE id = $1`, id,
	).Scan(
		&order.ID, &order.BuyerID, &order.SellerID, &order.Status, &order.PaymentMethod,
		&order.ShippingAddress, &order.TotalAmount, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, quantity, price FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func (r *pgOrderRepo) listBy(ctx context.Context, column string, id uuid.UUID, limit int) ([]model.Order, error) {
	query := fmt.Sprintf(`SELECT id, buyer_id, seller_id, status, payment_method,
			shipping_address, total_amount, created_at, updated_at
		FROM orders WHERE %s = $1 ORDER BY created_at DESC`, column)
	args := []any{id}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		err := rows.Scan(
			&o.ID, &o.BuyerID, &o.SellerID, &o.Status, &o.PaymentMethod,
			&o.ShippingAddress, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]model.Order, error) {
	return r.listBy(ctx, "buyer_id", buyerID, 0)
}

func (r *pgOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]model.Order, error) {
	return r.listBy(ctx, "seller_id", sellerID, limit)
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, orderID, sellerID uuid.UUID, from, to model.OrderStatus) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $4, updated_at = NOW()
		 WHERE id = $1 AND seller_id = $2 AND status = $3`,
		orderID, sellerID, from, to,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgOrderRepo) ListForExport(ctx context.Context) ([]model.OrderExportRow, error) {
	query := `SELECT o.id, b.email, s.email, o.status, o.payment_method, o.shipping_address,
				o.total_amount, COUNT(oi.id), o.created_at
			  FROM orders o
			  JOIN accounts b ON b.id = o.buyer_id
			  JOIN accounts s ON s.id = o.seller_id
			  LEFT JOIN order_items oi ON oi.order_id = o.id
			  GROUP BY o.id, b.email, s.email
			  ORDER BY o.created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders for export: %w", err)
	}
	defer rows.Close()

	var out []model.OrderExportRow
	for rows.Next() {
		var row model.OrderExportRow
		err := rows.Scan(
			&row.OrderID, &row.BuyerEmail, &row.SellerEmail, &row.Status, &row.PaymentMethod,
			&row.ShippingAddress, &row.TotalAmount, &row.ItemCount, &row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

type CartRepository interface {
	// Upsert keeps one row per (buyer, product); a repeated add replaces
	// the stored quantity with the submitted one.
	Upsert(ctx context.Context, item *model.CartItem) error
	ListLines(ctx context.Context, buyerID uuid.UUID) ([]model.CartLine, error)
	Delete(ctx context.Context, itemID, buyerID uuid.UUID) error
	Clear(ctx context.Context, buyerID uuid.UUID) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

func (r *pgCartRepo) Upsert(ctx context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	query := `INSERT INTO cart_items (id, buyer_id, product_id, quantity, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  ON CONFLICT (buyer_id, product_id)
			  DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, item.ID, item.BuyerID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) ListLines(ctx context.Context, buyerID uuid.UUID) ([]model.CartLine, error) {
	query := `SELECT ci.id, ci.buyer_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
				p.name, p.price, p.unit, p.seller_id, p.is_active
			  FROM cart_items ci
			  JOIN products p ON p.id = ci.product_id
			  WHERE ci.buyer_id = $1
			  ORDER BY ci.created_at`
	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var l model.CartLine
		err := rows.Scan(
			&l.Item.ID, &l.Item.BuyerID, &l.Item.ProductID, &l.Item.Quantity,
			&l.Item.CreatedAt, &l.Item.UpdatedAt,
			&l.ProductName, &l.UnitPrice, &l.Unit, &l.SellerID, &l.ProductActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Delete is owner-scoped: a row belonging to another buyer counts as
// not found, never as someone else's deletion.
func (r *pgCartRepo) Delete(ctx context.Context, itemID, buyerID uuid.UUID) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND buyer_id = $2`, itemID, buyerID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgCartRepo) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE buyer_id = $1`, buyerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

// ErrRowReferenced reports a delete blocked by a RESTRICT foreign key:
// products referenced by order items must survive for audit.
var ErrRowReferenced = errors.New("row is referenced by other rows")

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, query string, activeOnly bool, limit, offset int) ([]model.Product, int, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AverageRating(ctx context.Context, productID uuid.UUID) (decimal.NullDecimal, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, seller_id, name, description, price, category, unit,
	image_key, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Unit,
		&p.ImageKey, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, seller_id, name, description, price, category, unit,
				image_key, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.SellerID, product.Name, product.Description, product.Price,
		product.Category, product.Unit, product.ImageKey, product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, search string, activeOnly bool, limit, offset int) ([]model.Product, int, error) {
	where := `WHERE (NOT $1 OR is_active)
		AND ($2 = '' OR name ILIKE '%' || $2 || '%'
			OR description ILIKE '%' || $2 || '%'
			OR category ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products `+where, activeOnly, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products ` + where + `
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, activeOnly, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *pgProductRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE seller_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, description=$3, price=$4, category=$5, unit=$6,
				image_key=$7, is_active=$8, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.Unit, product.ImageKey, product.IsActive,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrRowReferenced
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AverageRating averages approved reviews only. The NullDecimal comes
// back invalid when the product has none, which callers must surface as
// "no rating" rather than zero.
func (r *pgProductRepo) AverageRating(ctx context.Context, productID uuid.UUID) (decimal.NullDecimal, error) {
	var avg decimal.NullDecimal
	err := r.pool.QueryRow(ctx,
		`SELECT AVG(rating)::numeric(3,2) FROM rating_reviews
		 WHERE product_id = $1 AND is_approved`, productID,
	).Scan(&avg)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

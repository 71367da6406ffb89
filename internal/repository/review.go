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

type ReviewRepository interface {
	// Upsert keeps one review per (buyer, product); resubmitting replaces
	// rating and comment on the existing row.
	Upsert(ctx context.Context, review *model.RatingReview) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.RatingReview, error)
	ListApprovedByProduct(ctx context.Context, productID uuid.UUID) ([]model.RatingReview, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]model.RatingReview, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved bool) error
}

type pgReviewRepo struct{ pool *pgxpool.Pool }

func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &pgReviewRepo{pool: pool}
}

func (r *pgReviewRepo) Upsert(ctx context.Context, review *model.RatingReview) error {
	review.ID = uuid.New()
	query := `INSERT INTO rating_reviews (id, product_id, buyer_id, rating, comment, is_approved,
				created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			  ON CONFLICT (product_id, buyer_id)
			  DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = NOW()
			  RETURNING id, is_approved, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		review.ID, review.ProductID, review.BuyerID, review.Rating, review.Comment, review.IsApproved,
	).Scan(&review.ID, &review.IsApproved, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.RatingReview, error) {
	review := &model.RatingReview{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, buyer_id, rating, comment, is_approved, created_at, updated_at
		 FROM rating_reviews WHERE id = $1`, id,
	).Scan(
		&review.ID, &review.ProductID, &review.BuyerID, &review.Rating, &review.Comment,
		&review.IsApproved, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

func (r *pgReviewRepo) scanReviews(rows pgx.Rows) ([]model.RatingReview, error) {
	defer rows.Close()
	var reviews []model.RatingReview
	for rows.Next() {
		var review model.RatingReview
		err := rows.Scan(
			&review.ID, &review.ProductID, &review.BuyerID, &review.Rating, &review.Comment,
			&review.IsApproved, &review.CreatedAt, &review.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *pgReviewRepo) ListApprovedByProduct(ctx context.Context, productID uuid.UUID) ([]model.RatingReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, buyer_id, rating, comment, is_approved, created_at, updated_at
		 FROM rating_reviews
		 WHERE product_id = $1 AND is_approved
		 ORDER BY created_at DESC`, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
	}
	return r.scanReviews(rows)
}

// ListBySeller returns recent reviews on the seller's products, approved
// or not, for the seller dashboard.
func (r *pgReviewRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]model.RatingReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rr.id, rr.product_id, rr.buyer_id, rr.rating, rr.comment, rr.is_approved,
			rr.created_at, rr.updated_at
		 FROM rating_reviews rr
		 JOIN products p ON p.id = rr.product_id
		 WHERE p.seller_id = $1
		 ORDER BY rr.created_at DESC
		 LIMIT $2`, sellerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list seller reviews: %w", err)
	}
	return r.scanReviews(rows)
}

func (r *pgReviewRepo) SetApproval(ctx context.Context, id uuid.UUID, approved bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE rating_reviews SET is_approved = $2, updated_at = NOW() WHERE id = $1`,
		id, approved,
	)
	if err != nil {
		return fmt.Errorf("set review approval: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

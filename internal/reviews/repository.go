package reviews

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Repository defines persistence operations for the reviews module.
type Repository interface {
	GetReview(ctx context.Context, id int64) (*Review, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetReview fetches a review by id.
func (r *PGRepository) GetReview(ctx context.Context, id int64) (*Review, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, product_id, author_id, rating, body, created_at, updated_at FROM reviews WHERE id = $1`, id)
	var rev Review
	if err := row.Scan(&rev.ID, &rev.ProductID, &rev.AuthorID, &rev.Rating, &rev.Body, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

var _ Repository = (*PGRepository)(nil)

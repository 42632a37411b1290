package stores

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Repository defines persistence operations for the stores module.
type Repository interface {
	GetStore(ctx context.Context, id int64) (*Store, error)
	CreateStore(ctx context.Context, name, slug string, ownerID int64) (*Store, error)
	ListMembers(ctx context.Context, userID int64) ([]Member, error)
	GetMember(ctx context.Context, userID, storeID int64) (*Member, error)
	UpsertMember(ctx context.Context, m Member) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetStore fetches a store by id.
func (r *PGRepository) GetStore(ctx context.Context, id int64) (*Store, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, owner_id, is_active, created_at, updated_at FROM stores WHERE id = $1`, id)
	var s Store
	if err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.OwnerID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CreateStore inserts a new store. The creating user becomes the owner and
// gets an ADMIN membership in the same transaction.
func (r *PGRepository) CreateStore(ctx context.Context, name, slug string, ownerID int64) (*Store, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var s Store
	err = tx.QueryRow(ctx,
		`INSERT INTO stores (name, slug, owner_id, is_active) VALUES ($1, $2, $3, TRUE)
		 RETURNING id, name, slug, owner_id, is_active, created_at, updated_at`,
		name, slug, ownerID,
	).Scan(&s.ID, &s.Name, &s.Slug, &s.OwnerID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_stores_slug" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO store_members (user_id, store_id, role) VALUES ($1, $2, $3)`,
		ownerID, s.ID, string(authz.StoreRoleAdmin)); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListMembers returns every membership the user holds.
func (r *PGRepository) ListMembers(ctx context.Context, userID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, store_id, role, created_at FROM store_members WHERE user_id = $1 ORDER BY store_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.StoreID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember fetches one membership row.
func (r *PGRepository) GetMember(ctx context.Context, userID, storeID int64) (*Member, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, store_id, role, created_at FROM store_members WHERE user_id = $1 AND store_id = $2`,
		userID, storeID)
	var m Member
	if err := row.Scan(&m.UserID, &m.StoreID, &m.Role, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// UpsertMember inserts or replaces the user's role for a store.
func (r *PGRepository) UpsertMember(ctx context.Context, m Member) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO store_members (user_id, store_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, store_id) DO UPDATE SET role = EXCLUDED.role`,
		m.UserID, m.StoreID, string(m.Role))
	return err
}

var _ Repository = (*PGRepository)(nil)

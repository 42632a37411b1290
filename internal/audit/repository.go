package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for the decision audit trail.
type Repository interface {
	Insert(ctx context.Context, entry DecisionEntry) error
	ListRecent(ctx context.Context, limit int) ([]DecisionEntry, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert stores one decision entry.
func (r *PGRepository) Insert(ctx context.Context, entry DecisionEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO authz_decisions (id, user_id, controller, handler, allowed, kind, reason, decided_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.UserID, entry.Controller, entry.Handler, entry.Allowed, entry.Kind, entry.Reason, entry.DecidedAt)
	return err
}

// ListRecent returns the newest decision entries.
func (r *PGRepository) ListRecent(ctx context.Context, limit int) ([]DecisionEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, controller, handler, allowed, kind, reason, decided_at
		 FROM authz_decisions ORDER BY decided_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Controller, &e.Handler, &e.Allowed, &e.Kind, &e.Reason, &e.DecidedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ Repository = (*PGRepository)(nil)

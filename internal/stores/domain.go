package stores

import (
	"time"

	"github.com/vendora-shop/vendora/internal/authz"
)

// Store represents a merchant storefront.
type Store struct {
	ID        int64
	Name      string
	Slug      string
	OwnerID   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member binds a user to a role within a store. One row per (user, store),
// enforced by a unique constraint.
type Member struct {
	UserID    int64
	StoreID   int64
	Role      authz.StoreRole
	CreatedAt time.Time
}

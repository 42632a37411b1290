// Seed inserts a demo dataset (users, a store, memberships, scopes, one
// order) and prints ready-to-use bearer tokens for manual testing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vendora-shop/vendora/internal/adapters"
	"github.com/vendora-shop/vendora/internal/app"
	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/platform/db"
	"github.com/vendora-shop/vendora/internal/stores"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		slog.Default().Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("vendora-demo"), bcrypt.DefaultCost)
	if err != nil {
		slog.Default().Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}

	seedUsers := []struct {
		email     string
		name      string
		siteAdmin bool
	}{
		{"admin@vendora.local", "Platform Admin", true},
		{"merchant@vendora.local", "Demo Merchant", false},
		{"customer@vendora.local", "Demo Customer", false},
	}

	ids := make(map[string]int64, len(seedUsers))
	for _, u := range seedUsers {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO users (email, name, password_hash, is_active, is_site_admin)
			 VALUES ($1, $2, $3, TRUE, $4)
			 ON CONFLICT (email) DO UPDATE SET is_site_admin = EXCLUDED.is_site_admin
			 RETURNING id`,
			u.email, u.name, string(hash), u.siteAdmin,
		).Scan(&id)
		if err != nil {
			slog.Default().Error("seed user", slog.String("email", u.email), slog.Any("error", err))
			os.Exit(1)
		}
		ids[u.email] = id
	}

	var storeID int64
	err = pool.QueryRow(ctx,
		`INSERT INTO stores (name, slug, owner_id, is_active)
		 VALUES ('Demo Outfitters', 'demo-outfitters', $1, TRUE)
		 ON CONFLICT (slug) DO UPDATE SET owner_id = EXCLUDED.owner_id
		 RETURNING id`,
		ids["merchant@vendora.local"],
	).Scan(&storeID)
	if err != nil {
		slog.Default().Error("seed store", slog.Any("error", err))
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO store_members (user_id, store_id, role) VALUES ($1, $2, 'ADMIN')
		 ON CONFLICT (user_id, store_id) DO UPDATE SET role = EXCLUDED.role`,
		ids["merchant@vendora.local"], storeID); err != nil {
		slog.Default().Error("seed membership", slog.Any("error", err))
		os.Exit(1)
	}

	for _, scope := range []string{"stores:create", "orders:read"} {
		if _, err := pool.Exec(ctx,
			`INSERT INTO user_permissions (user_id, scope) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ids["merchant@vendora.local"], scope); err != nil {
			slog.Default().Error("seed scope", slog.String("scope", scope), slog.Any("error", err))
			os.Exit(1)
		}
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO orders (store_id, customer_id, status, total_cents)
		 VALUES ($1, $2, 'PAID', 4999) ON CONFLICT DO NOTHING`,
		storeID, ids["customer@vendora.local"]); err != nil {
		slog.Default().Error("seed order", slog.Any("error", err))
		os.Exit(1)
	}

	// Verify the seeded membership through the same adapter the guard uses.
	storeSource := adapters.NewStoreRoleAdapter(stores.NewService(stores.NewRepository(pool)))
	held, err := storeSource.HasUserStoreRole(ctx, authz.StoreRoleAssignment{
		UserID:  ids["merchant@vendora.local"],
		StoreID: storeID,
		Role:    authz.StoreRoleAdmin,
	})
	if err != nil || !held {
		slog.Default().Error("membership verification failed", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := authz.NewTokenValidator(cfg.JWTSecret, nil)
	if err != nil {
		slog.Default().Error("token validator", slog.Any("error", err))
		os.Exit(1)
	}
	for _, u := range seedUsers {
		token, err := tokens.Sign(ids[u.email], u.email, 24*time.Hour)
		if err != nil {
			slog.Default().Error("sign token", slog.String("email", u.email), slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Printf("%s\n  %s\n", u.email, token)
	}
}

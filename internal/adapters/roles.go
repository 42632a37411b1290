// Package adapters binds the authorization engine's narrow source interfaces
// to the full domain services. Each adapter holds an explicit reference to
// exactly the services its role needs; there is no shared registration that
// one binding could silently overwrite.
package adapters

import (
	"context"
	"errors"

	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
	"github.com/vendora-shop/vendora/internal/stores"
	"github.com/vendora-shop/vendora/internal/users"
)

// UserRoleAdapter implements authz.UserRoleSource over the users and stores
// services. Store roles live with the stores domain, so the adapter needs
// both.
type UserRoleAdapter struct {
	Users  *users.Service
	Stores *stores.Service
}

// NewUserRoleAdapter constructs the adapter.
func NewUserRoleAdapter(userSvc *users.Service, storeSvc *stores.Service) *UserRoleAdapter {
	return &UserRoleAdapter{Users: userSvc, Stores: storeSvc}
}

func (a *UserRoleAdapter) IsUserActive(ctx context.Context, userID int64) (bool, error) {
	return a.Users.IsActive(ctx, userID)
}

func (a *UserRoleAdapter) IsSiteAdmin(ctx context.Context, userID int64) (bool, error) {
	return a.Users.IsSiteAdmin(ctx, userID)
}

func (a *UserRoleAdapter) GetUserStoreRoles(ctx context.Context, userID int64) ([]authz.StoreRoleAssignment, error) {
	return a.Stores.RolesForUser(ctx, userID)
}

func (a *UserRoleAdapter) GrantedScopes(ctx context.Context, userID int64) ([]string, error) {
	return a.Users.GrantedScopes(ctx, userID)
}

// StoreRoleAdapter implements authz.StoreRoleSource over the stores service.
type StoreRoleAdapter struct {
	Stores *stores.Service
}

// NewStoreRoleAdapter constructs the adapter.
func NewStoreRoleAdapter(storeSvc *stores.Service) *StoreRoleAdapter {
	return &StoreRoleAdapter{Stores: storeSvc}
}

func (a *StoreRoleAdapter) HasUserStoreRole(ctx context.Context, assignment authz.StoreRoleAssignment) (bool, error) {
	return a.Stores.HasRole(ctx, assignment)
}

// FindStore resolves the target store. A missing store is (nil, nil), not an
// error, so the guard can tell absence apart from a backend failure.
func (a *StoreRoleAdapter) FindStore(ctx context.Context, storeID int64) (*authz.StoreSummary, error) {
	store, err := a.Stores.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &authz.StoreSummary{ID: store.ID, Name: store.Name, OwnerID: store.OwnerID, IsActive: store.IsActive}, nil
}

// AdminAdapter implements authz.AdminSource over the users service. It is a
// distinct binding from UserRoleAdapter on purpose: the admin role gets its
// own named dependency rather than riding on the user-role one.
type AdminAdapter struct {
	Users *users.Service
}

// NewAdminAdapter constructs the adapter.
func NewAdminAdapter(userSvc *users.Service) *AdminAdapter {
	return &AdminAdapter{Users: userSvc}
}

func (a *AdminAdapter) IsUserValidAdmin(ctx context.Context, userID int64) (bool, error) {
	return a.Users.IsSiteAdmin(ctx, userID)
}

var (
	_ authz.UserRoleSource  = (*UserRoleAdapter)(nil)
	_ authz.StoreRoleSource = (*StoreRoleAdapter)(nil)
	_ authz.AdminSource     = (*AdminAdapter)(nil)
)

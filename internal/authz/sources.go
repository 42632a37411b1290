package authz

import "context"

// The engine never talks to domain services directly. Each concern it needs
// is expressed as a narrow read-only interface, implemented by adapter structs
// constructed explicitly at startup. Every adapter role binds to its own named
// dependency; two roles never share a registration.

// UserRoleSource answers identity questions about a user.
type UserRoleSource interface {
	// IsUserActive reports whether the account exists, is active and not
	// deleted. A valid token for an inactive account is still rejected.
	IsUserActive(ctx context.Context, userID int64) (bool, error)
	// IsSiteAdmin reports platform-wide administrative privilege.
	IsSiteAdmin(ctx context.Context, userID int64) (bool, error)
	// GetUserStoreRoles returns every store role the user holds.
	GetUserStoreRoles(ctx context.Context, userID int64) ([]StoreRoleAssignment, error)
	// GrantedScopes returns the user's granted "resource:action" scopes.
	GrantedScopes(ctx context.Context, userID int64) ([]string, error)
}

// StoreRoleSource answers store-scoped membership questions.
type StoreRoleSource interface {
	HasUserStoreRole(ctx context.Context, a StoreRoleAssignment) (bool, error)
	FindStore(ctx context.Context, storeID int64) (*StoreSummary, error)
}

// AdminSource confirms administrator records independently of UserRoleSource.
type AdminSource interface {
	IsUserValidAdmin(ctx context.Context, userID int64) (bool, error)
}

// Collaborators guarding ownership routes expose heterogeneous minimal lookup
// surfaces. The resolver discovers which of these a collaborator implements
// and tries them in preference order: EntityGetter, then EntityFinder, then
// EntityQuerier. A lookup that finds nothing returns (nil, nil).

// EntityGetter is the preferred minimal lookup surface.
type EntityGetter interface {
	GetEntityByID(ctx context.Context, id string) (any, error)
}

// EntityFinder is the second lookup surface.
type EntityFinder interface {
	FindByID(ctx context.Context, id string) (any, error)
}

// EntityQuerier is the generic last-resort lookup surface.
type EntityQuerier interface {
	FindOne(ctx context.Context, where map[string]string) (any, error)
}

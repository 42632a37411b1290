package authz

// PolicyEntry declares the minimum trust required for one route. A zero field
// means "no constraint of that kind".
type PolicyEntry struct {
	AdminRole            AdminRole
	StoreRoles           []StoreRole
	RequireAuthenticated bool
}

// RolesOnly reports whether the entry carries no constraint beyond
// authentication.
func (e *PolicyEntry) RolesOnly() bool {
	return e != nil && e.AdminRole == "" && len(e.StoreRoles) == 0
}

// AccessPolicyTable maps handler names to policy entries for one controller.
// It is the static fallback consulted when a route carries no declarative
// metadata.
type AccessPolicyTable map[string]PolicyEntry

// EntityOwnerConfig describes how an ownership-guarded route locates its
// target entity and reads the owner from it. OwnerOf belongs to the guard,
// not the resolver: retrieval and comparison are separate responsibilities.
type EntityOwnerConfig struct {
	// Lookup is the collaborator holding the entity. It must implement at
	// least one of EntityGetter, EntityFinder or EntityQuerier.
	Lookup any
	// IDParam names the route parameter carrying the entity id.
	IDParam string
	// AllowMissingEntity treats a missing entity as "not owned" (denied by
	// the ownership comparison) instead of an outright failure.
	AllowMissingEntity bool
	// OwnerOf extracts the owner-like field from a loaded entity. Returning
	// false means the entity has no comparable owner and the check denies.
	OwnerOf func(entity any) (int64, bool)
}

// Route identifies one registered handler together with everything the chain
// needs to authorize calls to it. Routes are built explicitly alongside route
// registration; there is no runtime discovery.
type Route struct {
	// Controller and Handler identify the route. Policy resolution is always
	// scoped to the controller, so equal handler names on different
	// controllers never share entries.
	Controller string
	Handler    string

	// Meta is declarative per-handler metadata. It beats any
	// AccessPolicyTable entry for the same handler.
	Meta *PolicyEntry

	// StoreIDParam names the route parameter carrying the store id for
	// store-role checks. Leaving it empty on a route whose policy declares
	// StoreRoles is a configuration error and denies.
	StoreIDParam string

	// Permissions lists resource:action scopes the caller must hold.
	Permissions []PermissionScope

	// Owner configures the entity-ownership check, when the route has one.
	Owner *EntityOwnerConfig
}

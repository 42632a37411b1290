package authz

// StoreRole is a privilege level scoped to one store.
type StoreRole string

// Store roles ordered from most to least privileged.
const (
	StoreRoleAdmin     StoreRole = "ADMIN"
	StoreRoleModerator StoreRole = "MODERATOR"
	StoreRoleGuest     StoreRole = "GUEST"
)

// StoreRoleAssignment binds a user to a role within one store.
// A user holds at most one role per store; the owning domain enforces that.
type StoreRoleAssignment struct {
	UserID  int64
	StoreID int64
	Role    StoreRole
}

// AdminRole marks a route as requiring platform-wide administrative privilege.
type AdminRole string

// AdminRoleSite is the only admin role currently defined.
const AdminRoleSite AdminRole = "SITE_ADMIN"

// Resource enumerates the platform resources permission scopes refer to.
type Resource string

const (
	ResourceStores   Resource = "stores"
	ResourceProducts Resource = "products"
	ResourceCarts    Resource = "carts"
	ResourceOrders   Resource = "orders"
	ResourceReviews  Resource = "reviews"
)

// Action enumerates the operations permission scopes refer to.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PermissionScope is a granular resource:action grant, independent of roles.
type PermissionScope struct {
	Resource Resource
	Action   Action
}

// String renders the scope in its canonical "resource:action" form.
func (s PermissionScope) String() string {
	return string(s.Resource) + ":" + string(s.Action)
}

// StoreSummary is the minimal store shape the engine reads from collaborators.
type StoreSummary struct {
	ID       int64
	Name     string
	OwnerID  int64
	IsActive bool
}

package authz

import "fmt"

// PolicyTarget carries the route-derived inputs a policy decision needs
// beyond the principal itself.
type PolicyTarget struct {
	StoreID    int64
	HasStoreID bool
}

// Engine is the pure policy decision function. It performs no I/O and holds
// no state: given a principal whose trust flags are already computed and the
// resolved entry, it decides allow or deny. The guard chain loads whatever
// the engine needs before calling it; tests can drive it directly.
type Engine struct{}

// Evaluate applies the full entry against the principal.
func (e Engine) Evaluate(p Principal, entry *PolicyEntry, target PolicyTarget) Decision {
	if entry == nil {
		return Allow()
	}
	if entry.RequireAuthenticated && p.ID == 0 {
		return Deny(DenyUnauthenticated, "authentication required")
	}
	if d := e.CheckAdmin(p, entry); !d.Allowed {
		return d
	}
	return e.CheckStoreRole(p, entry, target)
}

// CheckAdmin enforces the entry's AdminRole constraint. Admin constraints are
// satisfied by server-computed site-admin status only; a store-level role
// alone never grants a pass here.
func (e Engine) CheckAdmin(p Principal, entry *PolicyEntry) Decision {
	if entry == nil || entry.AdminRole == "" {
		return Allow()
	}
	if p.SiteAdmin {
		return Allow()
	}
	return Deny(DenyForbidden, fmt.Sprintf("admin role %s required", entry.AdminRole))
}

// CheckStoreRole enforces the entry's StoreRoles constraint against the
// target store. Site admins bypass it. A route that declares StoreRoles but
// yields no store id is a configuration error and denies.
func (e Engine) CheckStoreRole(p Principal, entry *PolicyEntry, target PolicyTarget) Decision {
	if entry == nil || len(entry.StoreRoles) == 0 {
		return Allow()
	}
	if p.SiteAdmin {
		return Allow()
	}
	if !target.HasStoreID {
		return Deny(DenyForbidden, "store role required but route provides no store id")
	}
	role, ok := p.StoreRoleFor(target.StoreID)
	if !ok {
		return Deny(DenyForbidden, fmt.Sprintf("no role for store %d", target.StoreID))
	}
	for _, allowed := range entry.StoreRoles {
		if role == allowed {
			return Allow()
		}
	}
	return Deny(DenyForbidden, fmt.Sprintf("role %s not permitted for store %d", role, target.StoreID))
}

// CheckPermissions requires every scope to be granted. Site admins and store
// admins for the target store bypass the check entirely. The deny reason
// names the missing scopes for observability.
func (e Engine) CheckPermissions(p Principal, required []PermissionScope, target PolicyTarget) Decision {
	if len(required) == 0 {
		return Allow()
	}
	if p.SiteAdmin {
		return Allow()
	}
	if target.HasStoreID {
		if role, ok := p.StoreRoleFor(target.StoreID); ok && role == StoreRoleAdmin {
			return Allow()
		}
	}
	var missing []string
	for _, scope := range required {
		if !p.HasScope(scope.String()) {
			missing = append(missing, scope.String())
		}
	}
	if len(missing) > 0 {
		return Deny(DenyForbidden, fmt.Sprintf("missing scopes: %v", missing))
	}
	return Allow()
}

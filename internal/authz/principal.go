package authz

// Principal is the authenticated identity for one request. It lives for a
// single request and is rebuilt from the credential every time; nothing in it
// survives across requests.
//
// Principal is a value type. Stages never mutate one in place: trust flags are
// attached by the With* methods, which return an updated copy. SiteAdmin and
// store roles are always recomputed server-side, so any value a client (or an
// earlier middleware) attached is overwritten before it can influence a
// decision.
type Principal struct {
	ID        int64
	Email     string
	IsActive  bool
	SiteAdmin bool

	storeRoles map[int64]StoreRole
	rolesSet   bool
	scopes     map[string]struct{}
	scopesSet  bool
}

// WithSiteAdmin returns a copy with the server-computed site-admin flag,
// replacing whatever was there before.
func (p Principal) WithSiteAdmin(admin bool) Principal {
	p.SiteAdmin = admin
	return p
}

// WithStoreRoles returns a copy carrying the given role assignments. The map
// is rebuilt from scratch; earlier values do not leak through.
func (p Principal) WithStoreRoles(assignments []StoreRoleAssignment) Principal {
	roles := make(map[int64]StoreRole, len(assignments))
	for _, a := range assignments {
		roles[a.StoreID] = a.Role
	}
	p.storeRoles = roles
	p.rolesSet = true
	return p
}

// WithScopes returns a copy carrying the given granted permission scopes.
func (p Principal) WithScopes(scopes []string) Principal {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	p.scopes = set
	p.scopesSet = true
	return p
}

// StoreRoleFor reports the principal's role for the given store, if any.
// Returns false when roles have not been loaded or no assignment exists.
func (p Principal) StoreRoleFor(storeID int64) (StoreRole, bool) {
	if !p.rolesSet {
		return "", false
	}
	role, ok := p.storeRoles[storeID]
	return role, ok
}

// StoreRolesLoaded reports whether role assignments were attached.
func (p Principal) StoreRolesLoaded() bool { return p.rolesSet }

// HasScope reports whether the principal holds the given permission scope.
func (p Principal) HasScope(scope string) bool {
	_, ok := p.scopes[scope]
	return ok
}

// ScopesLoaded reports whether granted scopes were attached.
func (p Principal) ScopesLoaded() bool { return p.scopesSet }

package authz_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-shop/vendora/internal/authz"
)

// ============================================================================
// STUB COLLABORATORS
// ============================================================================

type stubRoleSource struct {
	active map[int64]bool
	admins map[int64]bool
	roles  map[int64][]authz.StoreRoleAssignment
	scopes map[int64][]string

	// Stores resolve to an active summary unless flagged here.
	missingStores  map[int64]bool
	inactiveStores map[int64]bool

	// Lets the admin record diverge from the site-admin flag.
	adminRecordMissing map[int64]bool

	activeErr error
	adminErr  error
	rolesErr  error
	scopesErr error
	storeErr  error

	adminCalls int
}

func (s *stubRoleSource) IsUserActive(ctx context.Context, userID int64) (bool, error) {
	if s.activeErr != nil {
		return false, s.activeErr
	}
	return s.active[userID], nil
}

func (s *stubRoleSource) IsSiteAdmin(ctx context.Context, userID int64) (bool, error) {
	s.adminCalls++
	if s.adminErr != nil {
		return false, s.adminErr
	}
	return s.admins[userID], nil
}

func (s *stubRoleSource) GetUserStoreRoles(ctx context.Context, userID int64) ([]authz.StoreRoleAssignment, error) {
	if s.rolesErr != nil {
		return nil, s.rolesErr
	}
	return s.roles[userID], nil
}

func (s *stubRoleSource) GrantedScopes(ctx context.Context, userID int64) ([]string, error) {
	if s.scopesErr != nil {
		return nil, s.scopesErr
	}
	return s.scopes[userID], nil
}

func (s *stubRoleSource) IsUserValidAdmin(ctx context.Context, userID int64) (bool, error) {
	if s.adminErr != nil {
		return false, s.adminErr
	}
	return s.admins[userID] && !s.adminRecordMissing[userID], nil
}

func (s *stubRoleSource) HasUserStoreRole(ctx context.Context, a authz.StoreRoleAssignment) (bool, error) {
	for _, held := range s.roles[a.UserID] {
		if held.StoreID == a.StoreID && held.Role == a.Role {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRoleSource) FindStore(ctx context.Context, storeID int64) (*authz.StoreSummary, error) {
	if s.storeErr != nil {
		return nil, s.storeErr
	}
	if s.missingStores[storeID] {
		return nil, nil
	}
	return &authz.StoreSummary{ID: storeID, Name: "stub", IsActive: !s.inactiveStores[storeID]}, nil
}

type recordedDecision struct {
	rec authz.DecisionRecord
}

type stubRecorder struct {
	records []recordedDecision
}

func (r *stubRecorder) Record(ctx context.Context, rec authz.DecisionRecord) error {
	r.records = append(r.records, recordedDecision{rec: rec})
	return nil
}

type chainFixture struct {
	source   *stubRoleSource
	tokens   *authz.TokenValidator
	resolver *authz.PolicyResolver
	recorder *stubRecorder
	chain    *authz.Chain
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newChainFixture(t *testing.T, source *stubRoleSource) *chainFixture {
	t.Helper()
	tokens, err := authz.NewTokenValidator(testSecret, source)
	require.NoError(t, err)
	resolver := authz.NewPolicyResolver()
	recorder := &stubRecorder{}
	chain := authz.NewChain(authz.ChainConfig{
		Tokens:   tokens,
		Users:    source,
		Admins:   source,
		Stores:   source,
		Resolver: resolver,
		Owners:   authz.NewEntityOwnerResolver(nil),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder: recorder,
	})
	return &chainFixture{source: source, tokens: tokens, resolver: resolver, recorder: recorder, chain: chain}
}

func (f *chainFixture) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := f.tokens.Sign(userID, "user@test.local", time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func defaultSource() *stubRoleSource {
	return &stubRoleSource{
		active: map[int64]bool{1: true},
		admins: map[int64]bool{},
		roles:  map[int64][]authz.StoreRoleAssignment{},
		scopes: map[int64][]string{},
	}
}

// ============================================================================
// SCENARIOS
// ============================================================================

func TestChainAllowsUnconstrainedRoute(t *testing.T) {
	f := newChainFixture(t, defaultSource())

	decision, principal := f.chain.Evaluate(context.Background(), authz.Request{
		Route:      authz.Route{Controller: "products", Handler: "List"},
		Credential: f.token(t, 1),
	})

	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(1), principal.ID)
	assert.False(t, principal.SiteAdmin)
}

func TestChainDeniesMissingCredential(t *testing.T) {
	f := newChainFixture(t, defaultSource())

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{Controller: "products", Handler: "List"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyUnauthenticated, decision.Kind)
}

func TestChainDeniesInactiveAccountWithValidToken(t *testing.T) {
	source := defaultSource()
	source.active[1] = false
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route:      authz.Route{Controller: "products", Handler: "List"},
		Credential: f.token(t, 1),
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyUnauthenticated, decision.Kind)
}

func TestChainStoreRoleAdminAllowed(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleAdmin}}
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
			StoreIDParam: "storeID",
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	assert.True(t, decision.Allowed)
}

func TestChainStoreRoleGuestDenied(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleGuest}}
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
			StoreIDParam: "storeID",
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
}

func TestChainStoreRoleWrongStoreDenied(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 99, Role: authz.StoreRoleAdmin}}
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
			StoreIDParam: "storeID",
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
}

func TestChainStoreRoleTargetStoreGate(t *testing.T) {
	route := authz.Route{
		Controller:   "orders",
		Handler:      "ListForStore",
		Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
		StoreIDParam: "storeID",
	}

	cases := map[string]func(s *stubRoleSource){
		"missing store":        func(s *stubRoleSource) { s.missingStores = map[int64]bool{7: true} },
		"inactive store":       func(s *stubRoleSource) { s.inactiveStores = map[int64]bool{7: true} },
		"store lookup failure": func(s *stubRoleSource) { s.storeErr = errors.New("stores service down") },
	}
	for name, arrange := range cases {
		t.Run(name, func(t *testing.T) {
			source := defaultSource()
			source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleAdmin}}
			arrange(source)
			f := newChainFixture(t, source)

			decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
				Route:      route,
				Credential: f.token(t, 1),
				Params:     map[string]string{"storeID": "7"},
			})

			require.False(t, decision.Allowed)
			assert.Equal(t, authz.DenyForbidden, decision.Kind)
		})
	}
}

func TestChainStoreRoleMissingParamIsConfigError(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleAdmin}}
	f := newChainFixture(t, source)

	// Route declares StoreRoles but names no store id parameter.
	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "orders",
			Handler:    "ListForStore",
			Meta:       &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
}

func TestChainSiteAdminBypassesStoreRolesAndPermissions(t *testing.T) {
	source := defaultSource()
	source.admins[1] = true
	f := newChainFixture(t, source)

	decision, principal := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
			StoreIDParam: "storeID",
			Permissions:  []authz.PermissionScope{{Resource: authz.ResourceOrders, Action: authz.ActionRead}},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	assert.True(t, decision.Allowed)
	assert.True(t, principal.SiteAdmin)
}

func TestChainSiteAdminAlwaysComputed(t *testing.T) {
	source := defaultSource()
	source.admins[1] = true
	f := newChainFixture(t, source)

	// No policy asks for admin, yet the flag is computed and recorded.
	_, principal := f.chain.Evaluate(context.Background(), authz.Request{
		Route:      authz.Route{Controller: "products", Handler: "List"},
		Credential: f.token(t, 1),
	})

	assert.Equal(t, 1, source.adminCalls)
	assert.True(t, principal.SiteAdmin)
}

func TestChainAdminLookupFailureFailsClosed(t *testing.T) {
	source := defaultSource()
	source.admins[1] = true
	source.adminErr = errors.New("admin store down")
	f := newChainFixture(t, source)

	decision, principal := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "audit",
			Handler:    "Recent",
			Meta:       &authz.PolicyEntry{AdminRole: authz.AdminRoleSite},
		},
		Credential: f.token(t, 1),
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
	assert.False(t, principal.SiteAdmin)
}

func TestChainAdminRouteRequiresConfirmedRecord(t *testing.T) {
	source := defaultSource()
	source.admins[1] = true
	source.adminRecordMissing = map[int64]bool{1: true}
	f := newChainFixture(t, source)

	// The site-admin flag alone does not open admin routes; the record has to
	// confirm through its own source.
	decision, principal := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "audit",
			Handler:    "Recent",
			Meta:       &authz.PolicyEntry{AdminRole: authz.AdminRoleSite},
		},
		Credential: f.token(t, 1),
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
	assert.True(t, principal.SiteAdmin)
}

func TestChainAdminRoleNotSatisfiedByStoreRole(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleAdmin}}
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "audit",
			Handler:    "Recent",
			Meta:       &authz.PolicyEntry{AdminRole: authz.AdminRoleSite},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
}

func TestChainPermissionScopes(t *testing.T) {
	source := defaultSource()
	source.scopes[1] = []string{"orders:read"}
	f := newChainFixture(t, source)

	route := authz.Route{
		Controller:  "orders",
		Handler:     "Export",
		Permissions: []authz.PermissionScope{{Resource: authz.ResourceOrders, Action: authz.ActionRead}},
	}

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route:      route,
		Credential: f.token(t, 1),
	})
	assert.True(t, decision.Allowed)

	route.Permissions = append(route.Permissions, authz.PermissionScope{Resource: authz.ResourceOrders, Action: authz.ActionDelete})
	decision, _ = f.chain.Evaluate(context.Background(), authz.Request{
		Route:      route,
		Credential: f.token(t, 1),
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
	assert.Contains(t, decision.Reason, "orders:delete")
}

func TestChainStoreAdminBypassesPermissions(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleAdmin}}
	f := newChainFixture(t, source)

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "Export",
			StoreIDParam: "storeID",
			Permissions:  []authz.PermissionScope{{Resource: authz.ResourceOrders, Action: authz.ActionDelete}},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})

	assert.True(t, decision.Allowed)
}

func TestChainTableFallbackAndMetadataPrecedence(t *testing.T) {
	source := defaultSource()
	f := newChainFixture(t, source)
	f.resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
	})

	// Table applies when the route has no metadata.
	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route:      authz.Route{Controller: "orders", Handler: "Get", StoreIDParam: "storeID"},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	})
	require.False(t, decision.Allowed)

	// Declarative metadata on the route wins over the table entry.
	decision, _ = f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "orders",
			Handler:    "Get",
			Meta:       &authz.PolicyEntry{RequireAuthenticated: true},
		},
		Credential: f.token(t, 1),
	})
	assert.True(t, decision.Allowed)
}

func TestChainRecordsDecisions(t *testing.T) {
	f := newChainFixture(t, defaultSource())

	f.chain.Evaluate(context.Background(), authz.Request{
		Route:      authz.Route{Controller: "products", Handler: "List"},
		Credential: f.token(t, 1),
	})
	f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{Controller: "products", Handler: "List"},
	})

	require.Len(t, f.recorder.records, 2)
	assert.True(t, f.recorder.records[0].rec.Allowed)
	assert.NotEmpty(t, f.recorder.records[0].rec.ID)
	assert.False(t, f.recorder.records[1].rec.Allowed)
	assert.Equal(t, string(authz.DenyUnauthenticated), f.recorder.records[1].rec.Kind)
}

func TestChainIdempotentForSameInputs(t *testing.T) {
	source := defaultSource()
	source.roles[1] = []authz.StoreRoleAssignment{{UserID: 1, StoreID: 7, Role: authz.StoreRoleModerator}}
	f := newChainFixture(t, source)

	req := authz.Request{
		Route: authz.Route{
			Controller:   "orders",
			Handler:      "ListForStore",
			Meta:         &authz.PolicyEntry{StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin, authz.StoreRoleModerator}},
			StoreIDParam: "storeID",
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"storeID": "7"},
	}

	first, _ := f.chain.Evaluate(context.Background(), req)
	second, _ := f.chain.Evaluate(context.Background(), req)
	assert.Equal(t, first, second)
}

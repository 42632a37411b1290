package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-shop/vendora/internal/authz"
)

func TestResolveNothingRegistered(t *testing.T) {
	resolver := authz.NewPolicyResolver()

	entry := resolver.Resolve(authz.Route{Controller: "products", Handler: "List"})
	assert.Nil(t, entry)
}

func TestResolveHandlerMetadataWins(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterControllerPolicy("orders", authz.PolicyEntry{AdminRole: authz.AdminRoleSite})
	resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
	})

	entry := resolver.Resolve(authz.Route{
		Controller: "orders",
		Handler:    "Get",
		Meta:       &authz.PolicyEntry{RequireAuthenticated: true},
	})

	require.NotNil(t, entry)
	assert.True(t, entry.RequireAuthenticated)
	assert.Empty(t, entry.StoreRoles)
	assert.Empty(t, entry.AdminRole)
}

func TestResolveControllerMetadataBeatsTable(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterControllerPolicy("orders", authz.PolicyEntry{AdminRole: authz.AdminRoleSite})
	resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
	})

	entry := resolver.Resolve(authz.Route{Controller: "orders", Handler: "Get"})

	require.NotNil(t, entry)
	assert.Equal(t, authz.AdminRoleSite, entry.AdminRole)
	assert.Empty(t, entry.StoreRoles)
}

func TestResolveTableFallback(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin, authz.StoreRoleModerator}},
	})

	entry := resolver.Resolve(authz.Route{Controller: "orders", Handler: "Get"})

	require.NotNil(t, entry)
	assert.Len(t, entry.StoreRoles, 2)

	assert.Nil(t, resolver.Resolve(authz.Route{Controller: "orders", Handler: "Delete"}))
}

func TestResolveSynthesizesAuthOnlyEntry(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterTable("stores", authz.AccessPolicyTable{
		"Get": {RequireAuthenticated: true},
	})

	entry := resolver.Resolve(authz.Route{Controller: "stores", Handler: "Get"})

	require.NotNil(t, entry)
	assert.Equal(t, &authz.PolicyEntry{RequireAuthenticated: true}, entry)
}

func TestResolveScopedToController(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {StoreRoles: []authz.StoreRole{authz.StoreRoleAdmin}},
	})

	// Same handler name on a different controller resolves independently.
	assert.Nil(t, resolver.Resolve(authz.Route{Controller: "reviews", Handler: "Get"}))
}

func TestResolveReturnsCopies(t *testing.T) {
	resolver := authz.NewPolicyResolver()
	resolver.RegisterTable("orders", authz.AccessPolicyTable{
		"Get": {AdminRole: authz.AdminRoleSite},
	})

	first := resolver.Resolve(authz.Route{Controller: "orders", Handler: "Get"})
	first.AdminRole = ""

	second := resolver.Resolve(authz.Route{Controller: "orders", Handler: "Get"})
	assert.Equal(t, authz.AdminRoleSite, second.AdminRole)
}

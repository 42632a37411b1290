package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-shop/vendora/internal/authz"
)

type ownedEntity struct {
	id    string
	owner int64
}

// fullLookup implements all three lookup surfaces and counts calls so tests
// can observe the preference order.
type fullLookup struct {
	entities map[string]*ownedEntity

	getterErr error
	getterNil bool

	calls []string
}

func (l *fullLookup) GetEntityByID(ctx context.Context, id string) (any, error) {
	l.calls = append(l.calls, "GetEntityByID")
	if l.getterErr != nil {
		return nil, l.getterErr
	}
	if l.getterNil {
		return nil, nil
	}
	return l.find(id)
}

func (l *fullLookup) FindByID(ctx context.Context, id string) (any, error) {
	l.calls = append(l.calls, "FindByID")
	return l.find(id)
}

func (l *fullLookup) FindOne(ctx context.Context, where map[string]string) (any, error) {
	l.calls = append(l.calls, "FindOne")
	return l.find(where["id"])
}

func (l *fullLookup) find(id string) (any, error) {
	if e, ok := l.entities[id]; ok {
		return e, nil
	}
	return nil, nil
}

// finderOnlyLookup exposes FindByID alone.
type finderOnlyLookup struct {
	entities map[string]*ownedEntity
}

func (l *finderOnlyLookup) FindByID(ctx context.Context, id string) (any, error) {
	if e, ok := l.entities[id]; ok {
		return e, nil
	}
	return nil, nil
}

func ownerOf(entity any) (int64, bool) {
	e, ok := entity.(*ownedEntity)
	if !ok {
		return 0, false
	}
	return e.owner, true
}

func TestResolveOwnerPrefersGetEntityByID(t *testing.T) {
	lookup := &fullLookup{entities: map[string]*ownedEntity{"42": {id: "42", owner: 1}}}
	resolver := authz.NewEntityOwnerResolver(nil)

	entity, err := resolver.ResolveOwner(context.Background(), &authz.EntityOwnerConfig{
		Lookup:  lookup,
		IDParam: "id",
		OwnerOf: ownerOf,
	}, map[string]string{"id": "42"})

	require.NoError(t, err)
	assert.Equal(t, lookup.entities["42"], entity)
	assert.Equal(t, []string{"GetEntityByID"}, lookup.calls)
}

func TestResolveOwnerFallsBackOnGetterFailure(t *testing.T) {
	lookup := &fullLookup{
		entities:  map[string]*ownedEntity{"42": {id: "42", owner: 1}},
		getterErr: errors.New("surface unavailable"),
	}
	resolver := authz.NewEntityOwnerResolver(nil)

	entity, err := resolver.ResolveOwner(context.Background(), &authz.EntityOwnerConfig{
		Lookup:  lookup,
		IDParam: "id",
	}, map[string]string{"id": "42"})

	require.NoError(t, err)
	assert.NotNil(t, entity)
	assert.Equal(t, []string{"GetEntityByID", "FindByID"}, lookup.calls)
}

func TestResolveOwnerExhaustsAllSurfaces(t *testing.T) {
	lookup := &fullLookup{entities: map[string]*ownedEntity{}}
	resolver := authz.NewEntityOwnerResolver(nil)

	_, err := resolver.ResolveOwner(context.Background(), &authz.EntityOwnerConfig{
		Lookup:  lookup,
		IDParam: "id",
	}, map[string]string{"id": "42"})

	require.ErrorIs(t, err, authz.ErrEntityNotFound)
	assert.Equal(t, []string{"GetEntityByID", "FindByID", "FindOne"}, lookup.calls)
}

func TestResolveOwnerMissingParamIsConfigError(t *testing.T) {
	resolver := authz.NewEntityOwnerResolver(nil)

	_, err := resolver.ResolveOwner(context.Background(), &authz.EntityOwnerConfig{
		Lookup:  &finderOnlyLookup{},
		IDParam: "id",
	}, map[string]string{})

	require.ErrorIs(t, err, authz.ErrConfiguration)
}

func TestResolveOwnerRejectsUnknownLookupShape(t *testing.T) {
	resolver := authz.NewEntityOwnerResolver(nil)

	_, err := resolver.ResolveOwner(context.Background(), &authz.EntityOwnerConfig{
		Lookup:  struct{}{},
		IDParam: "id",
	}, map[string]string{"id": "42"})

	require.ErrorIs(t, err, authz.ErrConfiguration)
}

func TestChainOwnershipAllowsOwner(t *testing.T) {
	source := defaultSource()
	f := newChainFixture(t, source)
	lookup := &finderOnlyLookup{entities: map[string]*ownedEntity{"42": {id: "42", owner: 1}}}

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "orders",
			Handler:    "Get",
			Owner:      &authz.EntityOwnerConfig{Lookup: lookup, IDParam: "orderID", OwnerOf: ownerOf},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"orderID": "42"},
	})

	assert.True(t, decision.Allowed)
}

func TestChainOwnershipDeniesNonOwner(t *testing.T) {
	source := defaultSource()
	f := newChainFixture(t, source)
	lookup := &finderOnlyLookup{entities: map[string]*ownedEntity{"42": {id: "42", owner: 99}}}

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "orders",
			Handler:    "Get",
			Owner:      &authz.EntityOwnerConfig{Lookup: lookup, IDParam: "orderID", OwnerOf: ownerOf},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"orderID": "42"},
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, authz.DenyForbidden, decision.Kind)
}

func TestChainOwnershipMissingEntityDeniesNotErrors(t *testing.T) {
	source := defaultSource()
	f := newChainFixture(t, source)
	lookup := &finderOnlyLookup{entities: map[string]*ownedEntity{}}

	for _, allowMissing := range []bool{false, true} {
		decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
			Route: authz.Route{
				Controller: "orders",
				Handler:    "Get",
				Owner: &authz.EntityOwnerConfig{
					Lookup:             lookup,
					IDParam:            "orderID",
					AllowMissingEntity: allowMissing,
					OwnerOf:            ownerOf,
				},
			},
			Credential: f.token(t, 1),
			Params:     map[string]string{"orderID": "404"},
		})
		require.False(t, decision.Allowed)
		assert.Equal(t, authz.DenyForbidden, decision.Kind)
	}
}

func TestChainOwnershipSiteAdminBypass(t *testing.T) {
	source := defaultSource()
	source.admins[1] = true
	f := newChainFixture(t, source)
	lookup := &finderOnlyLookup{entities: map[string]*ownedEntity{"42": {id: "42", owner: 99}}}

	decision, _ := f.chain.Evaluate(context.Background(), authz.Request{
		Route: authz.Route{
			Controller: "orders",
			Handler:    "Get",
			Owner:      &authz.EntityOwnerConfig{Lookup: lookup, IDParam: "orderID", OwnerOf: ownerOf},
		},
		Credential: f.token(t, 1),
		Params:     map[string]string{"orderID": "42"},
	})

	assert.True(t, decision.Allowed)
}

package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-shop/vendora/internal/authz"
)

func newValidator(t *testing.T, source *stubRoleSource) *authz.TokenValidator {
	t.Helper()
	v, err := authz.NewTokenValidator(testSecret, source)
	require.NoError(t, err)
	return v
}

func TestTokenValidatorRejectsEmptySecret(t *testing.T) {
	_, err := authz.NewTokenValidator("", defaultSource())
	assert.Error(t, err)
}

func TestAuthenticateValidToken(t *testing.T) {
	v := newValidator(t, defaultSource())

	token, err := v.Sign(1, "user@test.local", time.Hour)
	require.NoError(t, err)

	principal, err := v.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), principal.ID)
	assert.Equal(t, "user@test.local", principal.Email)
	assert.True(t, principal.IsActive)
	assert.False(t, principal.SiteAdmin)
	assert.False(t, principal.StoreRolesLoaded())
}

func TestAuthenticateMissingToken(t *testing.T) {
	v := newValidator(t, defaultSource())

	_, err := v.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	v := newValidator(t, defaultSource())

	_, err := v.Authenticate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	v := newValidator(t, defaultSource())

	token, err := v.Sign(1, "user@test.local", -time.Minute)
	require.NoError(t, err)

	_, err = v.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	other, err := authz.NewTokenValidator("ffffffffffffffffffffffffffffffff", defaultSource())
	require.NoError(t, err)
	token, err := other.Sign(1, "user@test.local", time.Hour)
	require.NoError(t, err)

	v := newValidator(t, defaultSource())
	_, err = v.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	source := defaultSource()
	source.active[1] = false
	v := newValidator(t, source)

	token, err := v.Sign(1, "user@test.local", time.Hour)
	require.NoError(t, err)

	_, err = v.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAuthenticateAccountLookupFailure(t *testing.T) {
	source := defaultSource()
	source.activeErr = errors.New("users service down")
	v := newValidator(t, source)

	token, err := v.Sign(1, "user@test.local", time.Hour)
	require.NoError(t, err)

	_, err = v.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

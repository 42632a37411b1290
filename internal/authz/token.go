package authz

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims Vendora issues. The subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenValidator verifies bearer credentials and produces the request
// principal. Token issuance lives elsewhere; Sign exists for tests and
// seeding only.
type TokenValidator struct {
	secret []byte
	users  UserRoleSource
}

// NewTokenValidator constructs a validator. The secret signs with HS256 and
// must not be empty.
func NewTokenValidator(secret string, users UserRoleSource) (*TokenValidator, error) {
	if secret == "" {
		return nil, errors.New("authz: token secret must not be empty")
	}
	return &TokenValidator{secret: []byte(secret), users: users}, nil
}

// Authenticate verifies the raw credential and confirms the account is
// active. Every failure mode here is ErrUnauthenticated: the caller cannot
// distinguish a bad token from an inactive account.
func (v *TokenValidator) Authenticate(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, fmt.Errorf("%w: missing credential", ErrUnauthenticated)
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, fmt.Errorf("%w: token expired", ErrUnauthenticated)
		}
		return Principal{}, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("%w: invalid claims", ErrUnauthenticated)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, fmt.Errorf("%w: malformed subject", ErrUnauthenticated)
	}

	active, err := v.users.IsUserActive(ctx, userID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: account lookup failed", ErrUnauthenticated)
	}
	if !active {
		return Principal{}, fmt.Errorf("%w: account inactive", ErrUnauthenticated)
	}

	return Principal{ID: userID, Email: claims.Email, IsActive: true}, nil
}

// Sign mints a token for the given user. Used by tests and seed tooling.
func (v *TokenValidator) Sign(userID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Service wraps user account business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// IsActive reports whether the account exists, is active and not deleted.
// A missing account is simply inactive, not an error.
func (s *Service) IsActive(ctx context.Context, id int64) (bool, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsActive && !user.Deleted(), nil
}

// IsSiteAdmin reports whether the account holds platform-wide privilege.
// Inactive and deleted accounts are never admins regardless of the flag.
func (s *Service) IsSiteAdmin(ctx context.Context, id int64) (bool, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsSiteAdmin && user.IsActive && !user.Deleted(), nil
}

// GrantedScopes returns the user's permission scopes.
func (s *Service) GrantedScopes(ctx context.Context, id int64) ([]string, error) {
	return s.repo.ListScopes(ctx, id)
}

// VerifyPassword checks credentials for a user. Kept on the service so seed
// tooling and future login surfaces share one rule.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	if !user.IsActive || user.Deleted() {
		return nil, httpx.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, httpx.ErrUnauthorized
	}
	return user, nil
}

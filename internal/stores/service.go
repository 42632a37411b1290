package stores

import (
	"context"
	"errors"
	"strings"

	"github.com/vendora-shop/vendora/internal/authz"
	"github.com/vendora-shop/vendora/internal/platform/httpx"
)

// Service wraps store and membership business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a store by id.
func (s *Service) Get(ctx context.Context, id int64) (*Store, error) {
	return s.repo.GetStore(ctx, id)
}

// Create inserts a new store owned by ownerID.
func (s *Service) Create(ctx context.Context, name, slug string, ownerID int64) (*Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("stores: store name required")
	}
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, errors.New("stores: store slug required")
	}
	return s.repo.CreateStore(ctx, name, slug, ownerID)
}

// RolesForUser returns every role assignment the user holds across stores.
func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]authz.StoreRoleAssignment, error) {
	members, err := s.repo.ListMembers(ctx, userID)
	if err != nil {
		return nil, err
	}
	assignments := make([]authz.StoreRoleAssignment, len(members))
	for i, m := range members {
		assignments[i] = authz.StoreRoleAssignment{UserID: m.UserID, StoreID: m.StoreID, Role: m.Role}
	}
	return assignments, nil
}

// HasRole reports whether the user holds exactly the given role for a store.
func (s *Service) HasRole(ctx context.Context, a authz.StoreRoleAssignment) (bool, error) {
	member, err := s.repo.GetMember(ctx, a.UserID, a.StoreID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Role == a.Role, nil
}

// AssignRole grants or replaces the user's role for a store.
func (s *Service) AssignRole(ctx context.Context, a authz.StoreRoleAssignment) error {
	switch a.Role {
	case authz.StoreRoleAdmin, authz.StoreRoleModerator, authz.StoreRoleGuest:
	default:
		return errors.New("stores: unknown store role")
	}
	return s.repo.UpsertMember(ctx, Member{UserID: a.UserID, StoreID: a.StoreID, Role: a.Role})
}

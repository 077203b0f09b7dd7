// Package users lists admin accounts and changes their roles.
package users

import (
	"context"
	"errors"
	"fmt"

	"policyvault/internal/audit"
	"policyvault/internal/cache"
	"policyvault/internal/model"
)

// CreationUnsupportedMessage is shown to whoever tries to add a user here.
const CreationUnsupportedMessage = "User creation requires server-side implementation"

var (
	// ErrUserCreationUnsupported is returned for every creation attempt; accounts
	// are provisioned by the auth provider.
	ErrUserCreationUnsupported = errors.New("user creation unsupported")
	ErrInvalidRole             = errors.New("invalid role")
)

type Store interface {
	ListAdminProfiles(ctx context.Context) ([]model.Profile, error)
	UpdateRole(ctx context.Context, targetUserID string, role model.Role, entry model.LogEntry) (model.Profile, error)
}

type CreateRequest struct {
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type Service struct {
	store Store
	cache cache.Cache
}

func NewService(store Store, c cache.Cache) *Service {
	return &Service{store: store, cache: c}
}

func (s *Service) List(ctx context.Context) ([]model.Profile, error) {
	return cache.Fetch(ctx, s.cache, cache.Key{Entity: cache.EntityAdminUsers}, s.store.ListAdminProfiles)
}

// ChangeRole updates the target's role and its audit entry together, then
// drops the cached profile and admin list.
func (s *Service) ChangeRole(ctx context.Context, actorID, targetUserID string, role model.Role) (model.Profile, error) {
	if !role.Valid() {
		return model.Profile{}, ErrInvalidRole
	}
	profile, err := s.store.UpdateRole(ctx, targetUserID, role, audit.RoleChangeEntry(actorID, targetUserID, role))
	if err != nil {
		return model.Profile{}, fmt.Errorf("update role of %s: %w", targetUserID, err)
	}
	_ = s.cache.Invalidate(ctx,
		cache.Key{Entity: cache.EntityProfile, Owner: targetUserID},
		cache.Key{Entity: cache.EntityAdminUsers},
	)
	return profile, nil
}

func (s *Service) Create(context.Context, CreateRequest) (model.Profile, error) {
	return model.Profile{}, ErrUserCreationUnsupported
}

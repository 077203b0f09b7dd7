// Package roles derives admin and super-admin access from a user's profile.
package roles

import (
	"context"
	"errors"

	"policyvault/internal/cache"
	"policyvault/internal/model"
	"policyvault/internal/repository"
)

type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
}

type Access struct {
	IsAdmin      bool `json:"is_admin"`
	IsSuperAdmin bool `json:"is_super_admin"`
}

// AccessFor grants nothing without a profile.
func AccessFor(p *model.Profile) Access {
	if p == nil {
		return Access{}
	}
	return Access{
		IsAdmin:      p.Role == model.RoleAdmin || p.Role == model.RoleSuperAdmin,
		IsSuperAdmin: p.Role == model.RoleSuperAdmin,
	}
}

type Lookup struct {
	profiles ProfileReader
	cache    cache.Cache
}

func NewLookup(profiles ProfileReader, c cache.Cache) *Lookup {
	return &Lookup{profiles: profiles, cache: c}
}

// Profile returns the user's profile, or nil when the user has none.
func (l *Lookup) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, nil
	}
	key := cache.Key{Entity: cache.EntityProfile, Owner: userID}
	return cache.Fetch(ctx, l.cache, key, func(ctx context.Context) (*model.Profile, error) {
		profile, err := l.profiles.GetProfile(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	})
}

func (l *Lookup) Access(ctx context.Context, userID string) (Access, error) {
	profile, err := l.Profile(ctx, userID)
	if err != nil {
		return Access{}, err
	}
	return AccessFor(profile), nil
}

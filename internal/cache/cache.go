// Package cache holds query results keyed by entity and owner, with explicit
// invalidation after mutations.
package cache

import (
	"context"
	"time"
)

type Entity string

const (
	EntityPolicies      Entity = "policies"
	EntityPolicyOptions Entity = "policy_options"
	EntityDashboard     Entity = "dashboard"
	EntityClaims        Entity = "claims"
	EntityProfile       Entity = "profile"
	EntityAdminUsers    Entity = "admin_users"
	EntityBackupStats   Entity = "backup_stats"
	EntityRevokedToken  Entity = "revoked_token"
)

// Key identifies one cached query. Owner is usually a user id and may be empty
// for global queries.
type Key struct {
	Entity Entity
	Owner  string
}

func (k Key) String() string {
	return string(k.Entity) + ":" + k.Owner
}

type Cache interface {
	Get(ctx context.Context, key Key, dst any) (bool, error)
	Set(ctx context.Context, key Key, value any) error
	SetTTL(ctx context.Context, key Key, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...Key) error
}

// Fetch returns the cached value for key or loads and stores it. Cache failures
// degrade to a direct load.
func Fetch[T any](ctx context.Context, c Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if found, err := c.Get(ctx, key, &cached); err == nil && found {
		return cached, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	_ = c.Set(ctx, key, value)
	return value, nil
}

// OwnerKeys expands entities into keys for a single owner.
func OwnerKeys(owner string, entities ...Entity) []Key {
	keys := make([]Key, 0, len(entities))
	for _, entity := range entities {
		keys = append(keys, Key{Entity: entity, Owner: owner})
	}
	return keys
}

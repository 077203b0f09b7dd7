package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"policyvault/internal/cache"
)

// Denylist remembers signed-out tokens until they would have expired anyway.
type Denylist struct {
	cache cache.Cache
}

func NewDenylist(c cache.Cache) *Denylist {
	return &Denylist{cache: c}
}

func (d *Denylist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.cache.SetTTL(ctx, revokedKey(token), true, ttl)
}

func (d *Denylist) Revoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	found, err := d.cache.Get(ctx, revokedKey(token), &revoked)
	if err != nil {
		return false, err
	}
	return found && revoked, nil
}

func revokedKey(token string) cache.Key {
	return cache.Key{Entity: cache.EntityRevokedToken, Owner: HashToken(token)}
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

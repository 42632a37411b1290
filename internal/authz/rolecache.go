package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CachedUserRoleSource is a read-through cache in front of a UserRoleSource.
// Site-admin flags, store roles and granted scopes are cached in Redis under
// a short TTL; concurrent misses for the same user collapse into one backing
// query via singleflight, so a burst of requests never stampedes the domain
// services.
//
// IsUserActive is deliberately not cached: deactivating an account must take
// effect on the next request.
//
// Cache failures degrade to the backing source and are logged; they never
// change a decision.
type CachedUserRoleSource struct {
	next   UserRoleSource
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedUserRoleSource wraps next with a Redis read-through cache.
func NewCachedUserRoleSource(next UserRoleSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedUserRoleSource {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedUserRoleSource{next: next, client: client, ttl: ttl, logger: logger}
}

// IsUserActive always hits the backing source.
func (c *CachedUserRoleSource) IsUserActive(ctx context.Context, userID int64) (bool, error) {
	return c.next.IsUserActive(ctx, userID)
}

// IsSiteAdmin reports cached site-admin status.
func (c *CachedUserRoleSource) IsSiteAdmin(ctx context.Context, userID int64) (bool, error) {
	var admin bool
	err := c.readThrough(ctx, c.key("admin", userID), &admin, func() (any, error) {
		return c.next.IsSiteAdmin(ctx, userID)
	})
	return admin, err
}

// GetUserStoreRoles reports cached role assignments.
func (c *CachedUserRoleSource) GetUserStoreRoles(ctx context.Context, userID int64) ([]StoreRoleAssignment, error) {
	var roles []StoreRoleAssignment
	err := c.readThrough(ctx, c.key("roles", userID), &roles, func() (any, error) {
		return c.next.GetUserStoreRoles(ctx, userID)
	})
	return roles, err
}

// GrantedScopes reports cached permission scopes.
func (c *CachedUserRoleSource) GrantedScopes(ctx context.Context, userID int64) ([]string, error) {
	var scopes []string
	err := c.readThrough(ctx, c.key("scopes", userID), &scopes, func() (any, error) {
		return c.next.GrantedScopes(ctx, userID)
	})
	return scopes, err
}

// Invalidate drops every cached entry for the user, for callers that change
// role assignments and want the next request to see them immediately.
func (c *CachedUserRoleSource) Invalidate(ctx context.Context, userID int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key("admin", userID), c.key("roles", userID), c.key("scopes", userID)).Err()
}

func (c *CachedUserRoleSource) key(kind string, userID int64) string {
	return fmt.Sprintf("authz:%s:%d", kind, userID)
}

func (c *CachedUserRoleSource) readThrough(ctx context.Context, key string, out any, load func() (any, error)) error {
	if c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			if err := json.Unmarshal(payload, out); err == nil {
				return nil
			}
			// Corrupt entry: fall through to reload and overwrite.
		} else if !errors.Is(err, redis.Nil) && c.logger != nil {
			c.logger.WarnContext(ctx, "role cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		value, err := load()
		if err != nil {
			return nil, err
		}
		if c.client != nil {
			if data, merr := json.Marshal(value); merr == nil {
				if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil && c.logger != nil {
					c.logger.WarnContext(ctx, "role cache write failed", slog.String("key", key), slog.Any("error", serr))
				}
			}
		}
		return value, nil
	})
	if err != nil {
		return err
	}

	// Round-trip through JSON so every caller sees the same shape whether
	// the value came from the cache or the flight.
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

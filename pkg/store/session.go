package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:journal:"
	sessionTTL       = 24 * time.Hour
)

// SessionCache maps a client session token to its persisted journal id so
// repeated turns skip the DB lookup. Redis is the shared tier; when Redis is
// unavailable the cache degrades to a process-local TTL map. Both tiers are
// advisory only, the journals table remains the source of truth.
type SessionCache struct {
	rdb   *redis.Client
	local *gocache.Cache
}

func NewSessionCache(rdb *redis.Client) *SessionCache {
	return &SessionCache{
		rdb:   rdb,
		local: gocache.New(sessionTTL, 10*time.Minute),
	}
}

func (c *SessionCache) Get(ctx context.Context, sessionID string) (string, bool) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
		if err == nil && val != "" {
			return val, true
		}
	}
	if val, found := c.local.Get(sessionID); found {
		if journalID, ok := val.(string); ok {
			return journalID, true
		}
	}
	return "", false
}

func (c *SessionCache) Set(ctx context.Context, sessionID, journalID string) {
	c.local.Set(sessionID, journalID, sessionTTL)
	if c.rdb != nil {
		// Cache write failures are invisible to callers, the DB lookup covers.
		c.rdb.Set(ctx, sessionKeyPrefix+sessionID, journalID, sessionTTL)
	}
}

func (c *SessionCache) Delete(ctx context.Context, sessionID string) {
	c.local.Delete(sessionID)
	if c.rdb != nil {
		c.rdb.Del(ctx, sessionKeyPrefix+sessionID)
	}
}

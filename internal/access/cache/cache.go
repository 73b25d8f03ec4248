// Package cache fronts the entry read model with Redis. Misses fall
// through to the reader; writes invalidate. A nil client disables
// caching without changing any call site.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"garita/internal/domain"
)

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// EntryCache caches entry projections keyed by entry ID.
type EntryCache struct {
	client redisCmdable
	ttl    time.Duration
	logger *slog.Logger
}

// New wraps a redis client; client may be nil.
func New(client redisCmdable, ttl time.Duration, logger *slog.Logger) *EntryCache {
	return &EntryCache{client: client, ttl: ttl, logger: logger}
}

func key(entryID int64) string {
	return fmt.Sprintf("garita:ingreso:%d", entryID)
}

// Get returns the cached projection or (nil, false). Redis failures are
// treated as misses; the read model is the source of truth.
func (c *EntryCache) Get(ctx context.Context, entryID int64) (*domain.EntryProjection, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key(entryID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("entry cache read failed", "entry_id", entryID, "error", err)
		}
		return nil, false
	}

	var p domain.EntryProjection
	if err := json.Unmarshal(raw, &p); err != nil {
		c.logger.Warn("entry cache payload corrupt", "entry_id", entryID, "error", err)
		return nil, false
	}
	return &p, true
}

// Put stores the projection for the configured TTL.
func (c *EntryCache) Put(ctx context.Context, p *domain.EntryProjection) {
	if c == nil || c.client == nil || p == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("entry cache marshal failed", "entry_id", p.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, key(p.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("entry cache write failed", "entry_id", p.ID, "error", err)
	}
}

// Invalidate drops the cached projection after a write.
func (c *EntryCache) Invalidate(ctx context.Context, entryID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(entryID)).Err(); err != nil {
		c.logger.Warn("entry cache invalidation failed", "entry_id", entryID, "error", err)
	}
}

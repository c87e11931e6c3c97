package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/redis/go-redis/v9"
)

// A Backend provides the tab listing of a user.
type Backend interface {
	ListTabs(ctx context.Context, userID string) ([]*model.TabTree, error)
}

// A Cache wraps a Backend with a Redis-backed read-through cache.
// A nil Redis client disables caching.
type Cache struct {
	base  Backend
	redis *redis.Client
	ttl   time.Duration
}

// New returns a new Cache.
func New(base Backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("cache.New: base backend is nil")
	}
	if ttl < 0 {
		ttl = 0
	}

	return &Cache{
		base:  base,
		redis: client,
		ttl:   ttl,
	}
}

// ListTabs returns the cached tab listing of the user or loads it from the backend.
func (c *Cache) ListTabs(ctx context.Context, userID string) ([]*model.TabTree, error) {
	if tabs, ok := c.load(ctx, userID); ok {
		return tabs, nil
	}

	tabs, err := c.base.ListTabs(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, userID, tabs)
	return tabs, nil
}

// Evict drops the cached listing of the user.
func (c *Cache) Evict(ctx context.Context, userID string) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, tabsKey(userID)).Err()
}

func (c *Cache) load(ctx context.Context, userID string) ([]*model.TabTree, bool) {
	if c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, tabsKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backend without failing.
			_ = c.redis.Del(ctx, tabsKey(userID)).Err()
		}
		return nil, false
	}

	var tabs []*model.TabTree
	if err := sonic.ConfigStd.Unmarshal(data, &tabs); err != nil {
		_ = c.redis.Del(ctx, tabsKey(userID)).Err()
		return nil, false
	}
	return tabs, true
}

func (c *Cache) store(ctx context.Context, userID string, tabs []*model.TabTree) {
	if c.redis == nil || c.ttl == 0 {
		return
	}

	data, err := sonic.ConfigStd.Marshal(tabs)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tabsKey(userID), data, c.ttl).Err()
}

func tabsKey(userID string) string {
	return "bookmarkd:tabs:" + userID
}

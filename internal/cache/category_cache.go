// Package cache provides Redis caching for read-mostly reference data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	model "auction-market/internal/models"
	"auction-market/utils"

	"github.com/redis/go-redis/v9"
)

const categoriesKey = "auction:categories"

// NewRedisClient connects to addr (host:port or redis:// URL). It returns nil
// when addr is empty or the server is unreachable so callers run uncached.
func NewRedisClient(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			utils.Warn("invalid REDIS_URL, continuing without cache", map[string]any{"error": err.Error()})
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		utils.Warn("redis unreachable, continuing without cache", map[string]any{"error": err.Error()})
		_ = client.Close()
		return nil
	}

	utils.Info("redis connected", map[string]any{"addr": opts.Addr})
	return client
}

// CategoryCache stores the category list in Redis. A nil cache or client is a
// valid, always-missing cache.
type CategoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache creates a CategoryCache.
func NewCategoryCache(client *redis.Client, ttl time.Duration) *CategoryCache {
	return &CategoryCache{client: client, ttl: ttl}
}

// GetCategories returns the cached categories and whether they were found.
func (c *CategoryCache) GetCategories(ctx context.Context) ([]model.Category, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.Warn("category cache read failed", map[string]any{"error": err.Error()})
		}
		return nil, false
	}

	var categories []model.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		utils.Warn("category cache holds invalid data", map[string]any{"error": err.Error()})
		return nil, false
	}
	return categories, true
}

// SetCategories stores categories for the configured TTL.
func (c *CategoryCache) SetCategories(ctx context.Context, categories []model.Category) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(categories)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, categoriesKey, raw, c.ttl).Err(); err != nil {
		utils.Warn("category cache write failed", map[string]any{"error": err.Error()})
	}
}

// Invalidate drops the cached category list.
func (c *CategoryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, categoriesKey).Err(); err != nil {
		utils.Warn("category cache invalidate failed", map[string]any{"error": err.Error()})
	}
}

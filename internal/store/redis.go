package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scrollr/scrollr/internal/models"
)

const (
	feedGenKey    = "feed:gen"
	feedKeyPrefix = "feed:"
)

func feedKey(gen int64) string {
	return feedKeyPrefix + strconv.FormatInt(gen, 10)
}

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// RedisFeedCache keeps the joined feed as one JSON value per generation.
// Invalidate bumps feed:gen, so a value computed before a write lands
// under an old generation and is never read again; it just expires.
type RedisFeedCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFeedCache(rdb *redis.Client, ttl time.Duration) *RedisFeedCache {
	return &RedisFeedCache{rdb: rdb, ttl: ttl}
}

// Get returns the current generation and the feed cached for it, if any.
func (c *RedisFeedCache) Get(ctx context.Context) ([]models.Post, int64, bool, error) {
	gen, err := c.rdb.Get(ctx, feedGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("redis get feed generation: %w", err)
	}

	raw, err := c.rdb.Get(ctx, feedKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("redis get feed: %w", err)
	}
	var posts []models.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, gen, false, fmt.Errorf("redis decode feed: %w", err)
	}
	return posts, gen, true, nil
}

// Set stores posts for gen, as returned by the Get that preceded the
// store read.
func (c *RedisFeedCache) Set(ctx context.Context, gen int64, posts []models.Post) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("redis encode feed: %w", err)
	}
	return c.rdb.Set(ctx, feedKey(gen), raw, c.ttl).Err()
}

// Invalidate starts a new generation and drops the previous value.
func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	gen, err := c.rdb.Incr(ctx, feedGenKey).Result()
	if err != nil {
		return fmt.Errorf("redis bump feed generation: %w", err)
	}
	return c.rdb.Del(ctx, feedKey(gen-1)).Err()
}

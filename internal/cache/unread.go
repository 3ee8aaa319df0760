// Package cache holds the Redis-backed caches. Only the unread-message count
// is cached today; everything else reads straight from the store.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Unread counts change on every send and mark-as-read, so the TTL is short;
// both mutation paths also invalidate explicitly.
const unreadCountTTL = 30 * time.Second

// ErrMiss is returned when no cached value exists for the user.
var ErrMiss = errors.New("cache miss")

// UnreadCountCache caches per-user unread message counts.
type UnreadCountCache struct {
	client *redis.Client
}

// NewUnreadCountCache creates a cache around an existing Redis client.
func NewUnreadCountCache(client *redis.Client) *UnreadCountCache {
	return &UnreadCountCache{client: client}
}

func unreadKey(userID string) string {
	return "unread_count:" + userID
}

// Get returns the cached count for a user, or ErrMiss.
func (c *UnreadCountCache) Get(ctx context.Context, userID string) (int64, error) {
	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrMiss
		}
		return 0, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrMiss
	}
	return count, nil
}

// Set stores the count for a user.
func (c *UnreadCountCache) Set(ctx context.Context, userID string, count int64) error {
	return c.client.Set(ctx, unreadKey(userID), count, unreadCountTTL).Err()
}

// Invalidate drops the cached count for a user.
func (c *UnreadCountCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, unreadKey(userID)).Err()
}

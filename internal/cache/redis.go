// Package cache holds the Redis-backed helpers.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client from a redis:// URL or a host:port address
// and checks that the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

type keyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTriggerGuard remembers which posts were already sent to matching.
type RedisTriggerGuard struct {
	client keyStore
	ttl    time.Duration
}

func NewRedisTriggerGuard(client *redis.Client, ttl time.Duration) *RedisTriggerGuard {
	return &RedisTriggerGuard{client: client, ttl: ttl}
}

func triggerKey(postID int64) string {
	return "match:trigger:" + strconv.FormatInt(postID, 10)
}

// Acquire returns true for the first trigger of postID within the TTL.
func (g *RedisTriggerGuard) Acquire(ctx context.Context, postID int64) (bool, error) {
	ok, err := g.client.SetNX(ctx, triggerKey(postID), time.Now().UTC().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set trigger key: %w", err)
	}
	return ok, nil
}

// Release forgets postID so the next trigger is admitted again.
func (g *RedisTriggerGuard) Release(ctx context.Context, postID int64) error {
	if err := g.client.Del(ctx, triggerKey(postID)).Err(); err != nil {
		return fmt.Errorf("failed to delete trigger key: %w", err)
	}
	return nil
}

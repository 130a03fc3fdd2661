// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"greenguide/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client. It does not dial; call Ping to check reachability.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return &RedisClient{Client: rdb}, nil
}

// ConnectRedis creates a client and pings it. A client that fails the ping is
// closed before the error is returned.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*RedisClient, error) {
	client, err := NewRedis(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// IncrWindow increments key and starts its expiry on the first hit of a window.
// It returns the post-increment count and the time left in the window.
func (c *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis incr %s: %w", key, err)
	}

	if count == 1 {
		if err := c.Client.PExpire(ctx, key, window).Err(); err != nil {
			return count, window, fmt.Errorf("redis pexpire %s: %w", key, err)
		}
		return count, window, nil
	}

	ttl, err := c.Client.PTTL(ctx, key).Result()
	if err != nil {
		return count, window, fmt.Errorf("redis pttl %s: %w", key, err)
	}
	if ttl < 0 {
		// Key lost its expiry (e.g. a crash between INCR and PEXPIRE); restart the window.
		_ = c.Client.PExpire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

// Package cache is a best-effort Redis cache. Every failure behaves like a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// A nil *Client is valid and never hits.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client, or returns nil when addr is empty.
func New(addr, password string, db int) *Client {
	if addr == "" {
		return nil
	}
	return NewFromRedis(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

// NewFromRedis wraps an existing redis client.
func NewFromRedis(rc *redis.Client) *Client {
	return &Client{client: rc}
}

// Ping reports whether the server answers.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connectivity errors alike are misses
		return nil
	}
	return res
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

// GetJSON decodes the cached value into dst and reports whether it hit.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	data := c.Get(ctx, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON encodes value and stores it with TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	if payload, err := json.Marshal(value); err == nil {
		c.Set(ctx, key, payload, ttl)
	}
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

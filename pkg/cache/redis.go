package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a thin redis wrapper used as a read-through cache for the
// aggregate read models. Every method degrades to a cache miss on error so
// a redis outage never blocks a request.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// Options configures the cache client.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New creates a cache client. A nil return means caching is disabled.
func New(opts Options) *Client {
	if opts.Addr == "" {
		return nil
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl: ttl,
	}
}

// GetJSON loads the value at key into dest. Returns false on miss or any
// redis/decode failure.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores value at key with the configured TTL. Failures are
// swallowed.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, raw, c.ttl)
}

// Delete drops the given keys.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}

// Ping verifies connectivity, for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("cache disabled")
	}
	return c.rdb.Ping(ctx).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Store persists encoded entries together with their expiry. Implementations
// must be safe for concurrent use; writes are idempotent upserts.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, expiresAt time.Time, found bool, err error)
	Set(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Close() error
}

// Cache is a time-bounded memoization layer over a Store.
type Cache struct {
	store  Store
	nowFn  func() time.Time
	logger *slog.Logger
}

// New builds a Cache on top of store. A nil logger discards store errors.
func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		store:  store,
		nowFn:  time.Now,
		logger: logger,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (c *Cache) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		c.nowFn = nowFn
	}
}

// Now returns the cache's notion of the current time.
func (c *Cache) Now() time.Time {
	return c.nowFn()
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Lookup returns the value stored under key when it has not expired.
func Lookup[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var cached T
	if c == nil {
		return cached, false
	}

	raw, expiresAt, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return cached, false
	}
	if !found || !c.nowFn().Before(expiresAt) {
		return cached, false
	}
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("cache entry undecodable, recomputing", "key", key)
		return cached, false
	}
	return cached, true
}

// Put stores value under key until now+ttl. Store failures are logged, not
// returned; only an unencodable value is an error.
func Put[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, value T) error {
	if c == nil {
		return nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, encoded, c.nowFn().Add(ttl)); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return nil
}

// WithCache returns the cached value under key when it has not expired;
// otherwise it runs compute, stores its result for ttl and returns it.
// Errors from compute are returned as-is and never cached. A failing store
// degrades to calling compute.
func WithCache[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if cached, ok := Lookup[T](ctx, c, key); ok {
		return cached, nil
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	if err := Put(ctx, c, key, ttl, value); err != nil {
		return value, err
	}
	return value, nil
}

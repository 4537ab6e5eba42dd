// Package cache implements the read-through TTL cache in front of the
// primary store and the search index. The cache is an availability layer:
// backend failures degrade to misses and never surface to callers.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
)

// Key prefixes. Entity keys address one product; search keys address one
// normalized result page. searchKeyRegistry tracks every issued search key so
// the whole family can be evicted on a write.
const (
	entityKeyPrefix   = "product:"
	searchKeyPrefix   = "product_search:"
	searchKeyRegistry = "product_search:keys"
)

// ErrMiss is returned by Store.Get when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is the cache backend. Get returns ErrMiss for absent keys; any other
// error means the backend itself is unavailable.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Track records key membership in the named registry set. PurgeTracked
	// deletes every tracked key plus the registry itself.
	Track(ctx context.Context, registry, key string) error
	PurgeTracked(ctx context.Context, registry string) error
}

// Cache wraps a Store with a fixed TTL and the catalog key scheme.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache with the given TTL applied to every entry.
func New(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// EntityKey returns the cache key for a single product.
func EntityKey(id int64) string {
	return entityKeyPrefix + strconv.FormatInt(id, 10)
}

// SearchKey returns the cache key for a search request. The request is
// normalized first, so requests that differ only in omitted parameters share
// a key. The digest is over the canonical JSON form.
func SearchKey(req search.Request) string {
	data, err := json.Marshal(req.Normalize())
	if err != nil {
		// Request is a plain value type; Marshal cannot fail on it.
		panic(fmt.Sprintf("marshal search request: %v", err))
	}
	sum := sha256.Sum256(data)
	return searchKeyPrefix + hex.EncodeToString(sum[:])
}

// Remember returns the cached value under key, computing and storing it on a
// miss. Backend failures on read or write are logged and treated as a miss;
// compute errors are returned as-is and nothing is stored.
func Remember[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	return remember(ctx, c, key, "", compute)
}

// RememberSearch is Remember for search result pages. It additionally records
// the key in the search-key registry so InvalidateSearch can evict it later.
func RememberSearch[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error)) (T, error) {
	return remember(ctx, c, key, searchKeyRegistry, compute)
}

func remember[T any](ctx context.Context, c *Cache, key, registry string, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.store.Get(ctx, key)
	if err == nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("cache entry corrupt, recomputing",
			slog.String("key", key),
		)
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Warn("cache read failed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	v, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache marshal failed, skipping store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return v, nil
	}

	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return v, nil
	}

	if registry != "" {
		if err := c.store.Track(ctx, registry, key); err != nil {
			c.logger.Warn("cache key tracking failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return v, nil
}

// InvalidateEntity evicts the cached copy of one product. Backend failures
// are logged; the entry then expires by TTL.
func (c *Cache) InvalidateEntity(ctx context.Context, id int64) {
	if err := c.store.Delete(ctx, EntityKey(id)); err != nil {
		c.logger.Warn("entity cache invalidation failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// InvalidateSearch evicts every issued search result page. Backend failures
// are logged; entries then expire by TTL.
func (c *Cache) InvalidateSearch(ctx context.Context) {
	if err := c.store.PurgeTracked(ctx, searchKeyRegistry); err != nil {
		c.logger.Warn("search cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}

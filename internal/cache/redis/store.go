// Package redis implements cache.Store on Redis. Key tracking uses a Redis
// set so all issued search keys can be evicted with one purge.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/pkg/errors"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
)

// Store is a Redis-backed implementation of cache.Store.
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed store around an existing client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value under key, cache.ErrMiss when absent, or an error
// tagged ErrCacheUnavailable when Redis itself fails.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("redis get: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}
	return data, nil
}

// Set stores value under key for ttl.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}
	return nil
}

// Delete removes the value under key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}
	return nil
}

// Track adds key to the registry set. The set carries no TTL; purged keys
// that already expired are harmless to delete again.
func (s *Store) Track(ctx context.Context, registry, key string) error {
	if err := s.client.SAdd(ctx, registry, key).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}
	return nil
}

// PurgeTracked deletes every member of the registry set plus the set itself.
// Membership read and deletion are not atomic; a key issued between the two
// steps simply expires by TTL.
func (s *Store) PurgeTracked(ctx context.Context, registry string) error {
	keys, err := s.client.SMembers(ctx, registry).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}

	keys = append(keys, registry)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del tracked: %w", apperrors.Tag(err, apperrors.ErrCacheUnavailable))
	}
	return nil
}

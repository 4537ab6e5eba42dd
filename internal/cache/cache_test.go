package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache/memory"
	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/search"
)

const ttl = 90 * time.Second

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newCache(t *testing.T) (*cache.Cache, *memory.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewWithClock(clock.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cache.New(store, ttl, logger), store, clock
}

// failingStore wraps a Store and fails selected operations to simulate a
// backend outage.
type failingStore struct {
	cache.Store
	failGet bool
	failSet bool
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, errors.New("connection refused")
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.failSet {
		return errors.New("connection refused")
	}
	return s.Store.Set(ctx, key, value, ttl)
}

func TestEntityKey(t *testing.T) {
	assert.Equal(t, "product:42", cache.EntityKey(42))
}

func TestSearchKeyNormalizesRequest(t *testing.T) {
	// Requests differing only in omitted parameters share a key.
	explicit := search.Request{Sort: "created_at", Order: "desc", Page: 1, PerPage: 15}
	assert.Equal(t, cache.SearchKey(search.Request{}), cache.SearchKey(explicit))
}

func TestSearchKeyDistinguishesRequests(t *testing.T) {
	a := cache.SearchKey(search.Request{Query: "keyboard"})
	b := cache.SearchKey(search.Request{Query: "mouse"})
	c := cache.SearchKey(search.Request{Query: "keyboard", Page: 2})

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestRememberComputesOnMissAndCaches(t *testing.T) {
	c, _, _ := newCache(t)
	ctx := context.Background()
	calls := 0

	compute := func(context.Context) (string, error) {
		calls++
		return "value", nil
	}

	v, err := cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	v, err = cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 1, calls)
}

func TestRememberExpiresAfterTTL(t *testing.T) {
	c, _, clock := newCache(t)
	ctx := context.Background()
	calls := 0

	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(ttl + time.Second)

	v, err = cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRememberComputeErrorNotCached(t *testing.T) {
	c, store, _ := newCache(t)
	ctx := context.Background()

	_, err := cache.Remember(ctx, c, "k", func(context.Context) (string, error) {
		return "", errors.New("store down")
	})
	assert.Error(t, err)
	assert.Zero(t, store.Len())

	// A later successful compute fills the cache.
	v, err := cache.Remember(ctx, c, "k", func(context.Context) (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestRememberTreatsBackendReadFailureAsMiss(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	inner := memory.NewWithClock(clock.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.New(&failingStore{Store: inner, failGet: true}, ttl, logger)

	v, err := cache.Remember(context.Background(), c, "k", func(context.Context) (string, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
}

func TestRememberSurvivesBackendWriteFailure(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	inner := memory.NewWithClock(clock.Now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cache.New(&failingStore{Store: inner, failSet: true}, ttl, logger)

	v, err := cache.Remember(context.Background(), c, "k", func(context.Context) (string, error) {
		return "computed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Zero(t, inner.Len())
}

func TestRememberCachesNil(t *testing.T) {
	c, _, _ := newCache(t)
	ctx := context.Background()
	calls := 0

	compute := func(context.Context) (*string, error) {
		calls++
		return nil, nil
	}

	v, err := cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Nil(t, v)

	// The nil result is a cache hit, not a recompute.
	v, err = cache.Remember(ctx, c, "k", compute)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 1, calls)
}

func TestInvalidateEntity(t *testing.T) {
	c, _, _ := newCache(t)
	ctx := context.Background()
	calls := 0

	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := cache.Remember(ctx, c, cache.EntityKey(42), compute)
	require.NoError(t, err)

	c.InvalidateEntity(ctx, 42)

	v, err := cache.Remember(ctx, c, cache.EntityKey(42), compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestInvalidateSearchEvictsAllIssuedKeys(t *testing.T) {
	c, _, _ := newCache(t)
	ctx := context.Background()
	calls := 0

	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	keyA := cache.SearchKey(search.Request{Query: "keyboard"})
	keyB := cache.SearchKey(search.Request{Query: "keyboard", Page: 2})

	_, err := cache.RememberSearch(ctx, c, keyA, compute)
	require.NoError(t, err)
	_, err = cache.RememberSearch(ctx, c, keyB, compute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)

	c.InvalidateSearch(ctx)

	_, err = cache.RememberSearch(ctx, c, keyA, compute)
	require.NoError(t, err)
	_, err = cache.RememberSearch(ctx, c, keyB, compute)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestInvalidateSearchLeavesEntityKeysAlone(t *testing.T) {
	c, _, _ := newCache(t)
	ctx := context.Background()
	entityCalls := 0

	_, err := cache.Remember(ctx, c, cache.EntityKey(7), func(context.Context) (int, error) {
		entityCalls++
		return entityCalls, nil
	})
	require.NoError(t, err)

	c.InvalidateSearch(ctx)

	v, err := cache.Remember(ctx, c, cache.EntityKey(7), func(context.Context) (int, error) {
		entityCalls++
		return entityCalls, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

// Package memory provides an in-memory cache.Store for tests and local
// development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/HenriqueMVSS/API-CATALOGO-PRODUTOS/internal/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-memory implementation of cache.Store. Expired entries are
// dropped lazily on read.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	sets    map[string]map[string]struct{}
	now     func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store using the given clock, letting tests advance
// time without sleeping.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		entries: make(map[string]entry),
		sets:    make(map[string]map[string]struct{}),
		now:     now,
	}
}

// Get returns the value under key or cache.ErrMiss.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, cache.ErrMiss
	}
	return e.value, nil
}

// Set stores value under key for ttl.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes the value under key. Deleting an absent key is a no-op.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Track records key membership in the named registry set.
func (s *Store) Track(_ context.Context, registry, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[registry]
	if !ok {
		set = make(map[string]struct{})
		s.sets[registry] = set
	}
	set[key] = struct{}{}
	return nil
}

// PurgeTracked deletes every key tracked in the registry plus the registry
// itself.
func (s *Store) PurgeTracked(_ context.Context, registry string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.sets[registry] {
		delete(s.entries, key)
	}
	delete(s.sets, registry)
	return nil
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

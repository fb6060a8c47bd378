package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// Memory is a typed in-memory keyed store.
// Entries never expire on their own; owners decide what is stale.
type Memory[T any] struct {
	cache *gocache.Cache
}

// NewMemory creates an empty store without a background janitor
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value from the store
func (m *Memory[T]) Get(key string) (T, bool) {
	if val, found := m.cache.Get(key); found {
		return val.(T), true
	}
	var zero T
	return zero, false
}

// Set stores a value, replacing any previous one
func (m *Memory[T]) Set(key string, value T) {
	m.cache.Set(key, value, gocache.NoExpiration)
}

// Delete removes a value from the store
func (m *Memory[T]) Delete(key string) {
	m.cache.Delete(key)
}

// Items returns a snapshot of every stored value
func (m *Memory[T]) Items() map[string]T {
	items := m.cache.Items()
	out := make(map[string]T, len(items))
	for k, item := range items {
		out[k] = item.Object.(T)
	}
	return out
}

// Len returns the number of stored values
func (m *Memory[T]) Len() int {
	return m.cache.ItemCount()
}

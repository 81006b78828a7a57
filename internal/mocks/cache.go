package mocks

import (
	"sync"
	"time"

	"github.com/eloity/tradelimits/internal/cache"
)

// MockCache is a map-backed cache. Expirations are ignored, entries live
// until deleted.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{
		entries: make(map[string]string),
	}
}

func (m *MockCache) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}

	return value, nil
}

func (m *MockCache) Set(key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = value
	return nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *MockCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.entries[key]
	return ok
}

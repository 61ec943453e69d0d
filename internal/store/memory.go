package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for tests and
// throwaway sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string][]byte),
	}
}

// Get returns a copy of the value stored under collection/key.
func (m *MemoryStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under collection/key.
func (m *MemoryStore) Set(ctx context.Context, collection, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[collection]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[collection] = bucket
	}
	bucket[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes collection/key if present.
func (m *MemoryStore) Remove(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[collection], key)
	return nil
}

// Close does nothing for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

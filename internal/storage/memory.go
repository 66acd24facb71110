package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage used in tests. URLs are deterministic
// fakes; keys are tracked so tests can assert on uploads and deletes.
type MemoryStorage struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{keys: make(map[string]struct{})}
}

// PresignUpload records the key and returns a fake upload URL.
func (m *MemoryStorage) PresignUpload(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = struct{}{}
	return "memory://upload/" + key, nil
}

// PresignDownload returns a fake download URL.
func (m *MemoryStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "memory://download/" + key, nil
}

// Delete removes the key.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// Has reports whether the key was uploaded and not deleted.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok
}

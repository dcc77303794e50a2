package auth

import (
	"sync"

	"github.com/goliatone/go-formflow/pkg/model"
)

// MemoryStore caches one identity for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	identity model.Identity
	set      bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set caches identity, trimmed.
func (m *MemoryStore) Set(identity model.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = identity.Normalize()
	m.set = !m.identity.Empty()
}

// Get returns the cached identity.
func (m *MemoryStore) Get() (model.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity, m.set
}

// Clear drops the cached identity.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = model.Identity{}
	m.set = false
}

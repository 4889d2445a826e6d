package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory store for testing. Data is lost when the
// process exits, so it cannot provide crash recovery.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	exists bool
	closed bool
}

// NewMemoryStore creates a new in-memory store with no record.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}
	if !m.exists {
		return nil, ErrNotFound
	}

	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy to avoid retaining the caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)
	m.data = stored
	m.exists = true
	return nil
}

// Clean implements Store.
func (m *MemoryStore) Clean(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.data = nil
	m.exists = false
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Exists reports whether a record is currently stored. Test helper.
func (m *MemoryStore) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exists
}

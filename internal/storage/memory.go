package storage

import (
	"context"
	"sync"
)

// Memory is an in-memory Store, safe for concurrent use. Data is lost on
// restart; it backs tests and the one-shot CLI.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements the Store interface.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements the Store interface.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

var _ Store = (*Memory)(nil)

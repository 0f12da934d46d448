package localstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

type memory struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemory creates a process-local store.
func NewMemory() Store {
	return &memory{data: map[string]json.RawMessage{}}
}

func (m *memory) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *memory) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := validKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *memory) Remove(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

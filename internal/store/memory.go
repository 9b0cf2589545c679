package store

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and throwaway runs. A single
// mutex serializes everything, which trivially satisfies the RunAtomic
// contract.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(doc), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key] = cloneBytes(value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte)
	for k, v := range m.docs {
		if strings.HasPrefix(k, prefix) {
			out[k] = cloneBytes(v)
		}
	}
	return out, nil
}

func (m *Memory) RunAtomic(_ context.Context, key string, fn func(current []byte) ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current []byte
	if doc, ok := m.docs[key]; ok {
		current = cloneBytes(doc)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	m.docs[key] = cloneBytes(next)
	return cloneBytes(next), nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

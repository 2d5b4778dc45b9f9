package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// KVStore is the persistent key-value store application state lives in.
// Get returns nil, nil when the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Entry is one JSON-encoded value stored under a fixed key
type Entry[T any] struct {
	store    KVStore
	key      string
	fallback func() T
}

// NewEntry binds a key to a default value used when the key is absent
func NewEntry[T any](store KVStore, key string, fallback func() T) *Entry[T] {
	return &Entry[T]{store: store, key: key, fallback: fallback}
}

func (e *Entry[T]) Key() string { return e.key }

// Load returns the stored value. An absent key is initialised with the
// default value, which is written back and returned.
func (e *Entry[T]) Load(ctx context.Context) (T, error) {
	var value T
	data, err := e.store.Get(ctx, e.key)
	if err != nil {
		return value, fmt.Errorf("failed to read %s: %w", e.key, err)
	}
	if data == nil {
		value = e.fallback()
		if err := e.Store(ctx, value); err != nil {
			return value, err
		}
		return value, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("failed to decode %s: %w", e.key, err)
	}
	return value, nil
}

// Store replaces the stored value
func (e *Entry[T]) Store(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", e.key, err)
	}
	if err := e.store.Set(ctx, e.key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.key, err)
	}
	return nil
}

// MemoryKV keeps values in process memory
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

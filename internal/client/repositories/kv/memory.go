package kv

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"sync"
)

// MemoryRepository keeps values in process memory only. Values are copied
// on the way in and out so callers cannot alias stored bytes.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = bytes.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		out[k] = bytes.Clone(v)
	}
	return out, nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.data)
	return nil
}

func (r *MemoryRepository) Apply(_ context.Context, ops ...Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.data)
	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			next[op.Key] = bytes.Clone(op.Value)
		case OpDelete:
			delete(next, op.Key)
		default:
			return fmt.Errorf("unknown kv op %d for key %s", op.Kind, op.Key)
		}
	}
	r.data = next
	return nil
}

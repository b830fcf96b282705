package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/useraccounts/internal/client/repositories/kv"
	"github.com/dmitrijs2005/useraccounts/internal/logging"
)

// Store mirrors a kv.Repository in memory. Mutations persist first and
// update the mirror under the same write lock, so readers only ever see
// the state before or after a mutation.
type Store struct {
	repo kv.Repository
	log  logging.Logger

	mu     sync.RWMutex
	mirror map[string][]byte

	subsMu sync.Mutex
	subs   map[int]func(key string)
	nextID int
}

// NewStore loads the current contents of repo. When the backend cannot be
// read the store starts empty, so every Read yields its default.
func NewStore(ctx context.Context, repo kv.Repository, log logging.Logger) *Store {
	s := &Store{
		repo:   repo,
		log:    log,
		mirror: make(map[string][]byte),
		subs:   make(map[int]func(string)),
	}

	data, err := repo.List(ctx)
	if err != nil {
		log.Warn(ctx, "persistent storage unavailable, starting empty", "error", err)
		return s
	}
	if data != nil {
		s.mirror = data
	}
	return s
}

func (s *Store) raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.mirror[key]
	return v, ok
}

// Apply persists ops as one batch and then reflects them in the mirror.
// On a backend error the mirror is left as it was.
func (s *Store) Apply(ctx context.Context, ops ...kv.Op) error {
	if len(ops) == 0 {
		return nil
	}

	s.mu.Lock()
	if err := s.repo.Apply(ctx, ops...); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist %d cache op(s): %w", len(ops), err)
	}
	keys := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case kv.OpSet:
			s.mirror[op.Key] = bytes.Clone(op.Value)
		case kv.OpDelete:
			delete(s.mirror, op.Key)
		}
		keys = append(keys, op.Key)
	}
	s.mu.Unlock()

	s.notify(keys)
	return nil
}

// Reload replaces the mirror with the backend's contents and notifies
// subscribers of every key whose value changed. The backend is read under
// the write lock, so a concurrent Apply lands either before the snapshot
// or after the swap.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	data, err := s.repo.List(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("reload cache: %w", err)
	}
	if data == nil {
		data = make(map[string][]byte)
	}

	var changed []string
	for k, v := range data {
		if old, ok := s.mirror[k]; !ok || !bytes.Equal(old, v) {
			changed = append(changed, k)
		}
	}
	for k := range s.mirror {
		if _, ok := data[k]; !ok {
			changed = append(changed, k)
		}
	}
	s.mirror = data
	s.mu.Unlock()

	slices.Sort(changed)
	if len(changed) > 0 {
		s.log.Debug(ctx, "cache reloaded", "changed", changed)
	}
	s.notify(changed)
	return nil
}

// Keys returns the keys currently held, sorted.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.mirror))
}

// Subscribe registers fn to be called with the key of every change. The
// returned func removes the subscription.
func (s *Store) Subscribe(fn func(key string)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Store) notify(keys []string) {
	if len(keys) == 0 {
		return
	}
	s.subsMu.Lock()
	fns := slices.Collect(maps.Values(s.subs))
	s.subsMu.Unlock()

	for _, key := range keys {
		for _, fn := range fns {
			fn(key)
		}
	}
}

// Read returns the value stored under key decoded as T, or def when the key
// is absent or its contents do not decode as T.
func Read[T any](s *Store, key string, def T) T {
	if s == nil {
		return def
	}
	b, ok := s.raw(key)
	if !ok {
		return def
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def
	}
	return v
}

// Write stores v under key. A Read issued after Write returns sees v.
func Write[T any](ctx context.Context, s *Store, key string, v T) error {
	op, err := setOp(key, v)
	if err != nil {
		return err
	}
	return s.Apply(ctx, op)
}

// Clear removes key; subsequent reads return their default.
func Clear(ctx context.Context, s *Store, key string) error {
	return s.Apply(ctx, kv.DeleteOp(key))
}

func setOp[T any](key string, v T) (kv.Op, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return kv.Op{}, fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return kv.SetOp(key, b), nil
}

package cache

import (
	"context"

	"github.com/dmitrijs2005/useraccounts/internal/client/repositories/kv"
)

// Value is a named, typed slot in a Store with a fixed default.
type Value[T any] struct {
	store *Store
	key   string
	def   T
}

func NewValue[T any](store *Store, key string, def T) *Value[T] {
	return &Value[T]{store: store, key: key, def: def}
}

func (v *Value[T]) Key() string { return v.key }

func (v *Value[T]) Default() T { return v.def }

func (v *Value[T]) Get() T {
	return Read(v.store, v.key, v.def)
}

func (v *Value[T]) Set(ctx context.Context, val T) error {
	return Write(ctx, v.store, v.key, val)
}

func (v *Value[T]) Clear(ctx context.Context) error {
	return Clear(ctx, v.store, v.key)
}

// SetOp returns the mutation that would store val, for use with
// Store.Apply when several values must change together.
func (v *Value[T]) SetOp(val T) (kv.Op, error) {
	return setOp(v.key, val)
}

func (v *Value[T]) ClearOp() kv.Op {
	return kv.DeleteOp(v.key)
}

package kv

import "context"

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Apply(ctx context.Context, ops ...Op) error
}

type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a single mutation inside an Apply batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

func SetOp(key string, value []byte) Op {
	return Op{Kind: OpSet, Key: key, Value: value}
}

func DeleteOp(key string) Op {
	return Op{Kind: OpDelete, Key: key}
}

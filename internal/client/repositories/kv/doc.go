// Package kv provides the durable key/value layer behind the client's
// persistent cache.
//
// # Overview
//
// Repository is a flat byte-oriented store: Get/Set/Delete for single keys,
// List/Clear for the whole namespace and Apply for an atomic batch of
// mutations. Two implementations exist:
//
//   - SQLiteRepository: rows in the kv_store table, created by the embedded
//     migrations (see internal/client/migrations).
//   - MemoryRepository: a mutex-guarded map; used when the storage file
//     cannot be opened and in tests.
//
// # Contract
//
// Get returns (nil, nil) for an absent key. Delete of an absent key is not an
// error. Errors are wrapped with the key they concern.
//
// Typical Usage
//
//	repo := kv.NewSQLiteRepository(db)
//	_ = repo.Apply(ctx, kv.SetOp("token", []byte(`"abc"`)), kv.SetOp("userId", []byte("7")))
//	v, _ := repo.Get(ctx, "token")
package kv

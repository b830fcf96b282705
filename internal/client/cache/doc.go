// Package cache is the client's persistent key/value cache: typed values
// stored as JSON in a kv.Repository, mirrored in memory so reads never touch
// the backend and never fail.
//
// A Write is visible to the next Read in the same process as soon as it
// returns. Writes made by other processes sharing the storage file reach
// this process through Watcher, which reloads the mirror when the file
// changes; nothing in the package relies on it for same-process
// consistency.
//
// Typical usage
//
//	store := cache.NewStore(ctx, kv.NewSQLiteRepository(db), logger)
//	token := cache.NewValue(store, "token", "")
//	_ = token.Set(ctx, "abc123")
//	token.Get() // "abc123"
package cache

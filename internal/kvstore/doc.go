// Package kvstore is the persistence port of the card cache: a small
// key-value blob store with three interchangeable backends.
//
// # Backends
//
//   - memory: process-local map, used by tests and throwaway sessions.
//   - file:   one file per key in a flat directory, atomic rename on write.
//   - sqlite: a single kv_items table in a modernc.org/sqlite database with
//     WAL journaling; batch writes and deletes run in one transaction.
//
// Select a backend in config.toml:
//
//	[storage]
//	backend = "sqlite"
//
// The store never interprets values. A missing key is a normal outcome
// (found=false) and is never reported as an error.
package kvstore

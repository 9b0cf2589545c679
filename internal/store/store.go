// Package store defines the transactional document store consumed by the
// normalization pipeline and the LPN service, plus Postgres, SQLite, and
// in-memory backends.
//
// Keys are hierarchical slash-separated paths (for example
// "users/u1/projects/p1/components/<id>") and values are opaque JSON
// documents. RunAtomic is the only primitive with a strong consistency
// guarantee: the read-modify-write it performs is invisible to other
// callers until it commits, which is what makes the shared LPN sequence
// counter safe under concurrent callers.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no document.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal transactional document store.
type Store interface {
	// Get returns the document at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the document at key, creating or replacing it.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the document at key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error

	// List returns every document whose key starts with prefix,
	// keyed by full key.
	List(ctx context.Context, prefix string) (map[string][]byte, error)

	// RunAtomic applies fn to the current document at key (nil when
	// absent) and durably writes the result, all as one atomic
	// read-modify-write. No other caller observes an intermediate
	// state, and two concurrent calls are serialized. An error from
	// fn aborts the write and is returned unchanged.
	RunAtomic(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) ([]byte, error)
}

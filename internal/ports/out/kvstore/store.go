package kvstore

import (
	"context"
	"errors"
)

// ErrStoreClosed indicates the backing store has been closed.
var ErrStoreClosed = errors.New("kv store closed")

// Store is a durable key-addressed read/write surface with whole-document
// get/set semantics per key. Layers above it (document repositories, the
// session cache, the local identity provider's credential records) decide
// what a document means.
type Store interface {
	// Get returns the document stored at key. ok is false when the key is
	// absent; that is not an error.
	Get(ctx context.Context, key string) (doc []byte, ok bool, err error)

	// Set atomically replaces the document stored at key.
	Set(ctx context.Context, key string, doc []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

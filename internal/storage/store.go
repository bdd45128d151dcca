// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
)

// Store defines the key-value contract the attendance core persists through.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the attendance layer.
type Store interface {
	// Get retrieves the value stored under key.
	// A missing key returns found=false and a nil error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

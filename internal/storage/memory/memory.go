// Package memory provides a volatile, map-backed storage.Store.
// Useful for tests and for running without a database file.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/mmynk/dtlattendance/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("memory store closed")

// Store is an in-memory key-value store. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/dtlattendance/internal/storage"
)

// keyWriter persists successive values of one storage key in the
// background.
//
// At most one drain goroutine runs per key, so writes to the same key never
// overlap. Values submitted while a write is in flight are coalesced: only
// the most recent one is written next.
type keyWriter struct {
	key     string
	kv      storage.Store
	timeout time.Duration
	done    func(key string, err error)

	mu      sync.Mutex
	pending []byte
	dirty   bool
	busy    bool
	closed  bool
	idle    chan struct{} // closed while no drain goroutine is running
}

func newKeyWriter(key string, kv storage.Store, timeout time.Duration, done func(string, error)) *keyWriter {
	idle := make(chan struct{})
	close(idle)
	return &keyWriter{
		key:     key,
		kv:      kv,
		timeout: timeout,
		done:    done,
		idle:    idle,
	}
}

// submit schedules data to be written. Returns false once the writer is closed.
func (w *keyWriter) submit(data []byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}

	w.pending = data
	w.dirty = true

	if !w.busy {
		w.busy = true
		w.idle = make(chan struct{})
		go w.drain()
	}
	return true
}

func (w *keyWriter) drain() {
	for {
		w.mu.Lock()
		if !w.dirty {
			w.busy = false
			close(w.idle)
			w.mu.Unlock()
			return
		}
		data := w.pending
		w.pending, w.dirty = nil, false
		w.mu.Unlock()

		// Issued writes run to completion; only the timeout bounds them.
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.kv.Set(ctx, w.key, data)
		cancel()

		w.done(w.key, err)
	}
}

// flush blocks until no write is pending or in flight, or ctx is done.
func (w *keyWriter) flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *keyWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/dtlattendance/internal/datekey"
	"github.com/mmynk/dtlattendance/internal/ident"
	"github.com/mmynk/dtlattendance/internal/storage"
	"github.com/mmynk/dtlattendance/internal/storage/memory"
)

var (
	errGetFailed = errors.New("disk unreadable")
	errSetFailed = errors.New("disk full")
)

// testDay is noon local time, far from any midnight boundary.
var testDay = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

// sequentialIDs returns a generator yielding prefix_1, prefix_2, ... with a
// single counter shared across prefixes.
func sequentialIDs() ident.Generator {
	var mu sync.Mutex
	n := 0
	return ident.GeneratorFunc(func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates an initialized Store over kv with a fixed clock and
// sequential ids.
func newTestStore(t *testing.T, kv storage.Store, opts ...Option) (*Store, *datekey.FixedClock) {
	t.Helper()
	clock := datekey.NewFixedClock(testDay)
	base := []Option{
		WithClock(clock),
		WithIDGenerator(sequentialIDs()),
		WithLogger(quietLogger()),
	}
	s := New(kv, append(base, opts...)...)
	s.Initialize(context.Background())
	t.Cleanup(func() { s.Close(context.Background()) })
	return s, clock
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

// failingStore fails every read and write.
type failingStore struct {
	mu   sync.Mutex
	sets int
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errGetFailed
}

func (f *failingStore) Set(context.Context, string, []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	return errSetFailed
}

func (f *failingStore) Close() error { return nil }

// recordingStore wraps a memory store, records every Set, and tracks how
// many writes to one key overlap. When gate is non-nil each Set signals
// started and then waits on gate.
type recordingStore struct {
	*memory.Store

	started chan string
	gate    chan struct{}

	mu          sync.Mutex
	writes      map[string][]string
	inFlight    map[string]int
	maxInFlight int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		Store:    memory.New(),
		writes:   make(map[string][]string),
		inFlight: make(map[string]int),
	}
}

func (r *recordingStore) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	r.inFlight[key]++
	if r.inFlight[key] > r.maxInFlight {
		r.maxInFlight = r.inFlight[key]
	}
	r.mu.Unlock()

	if r.gate != nil {
		r.started <- key
		<-r.gate
	}

	err := r.Store.Set(ctx, key, value)

	r.mu.Lock()
	r.inFlight[key]--
	r.writes[key] = append(r.writes[key], string(value))
	r.mu.Unlock()
	return err
}

func (r *recordingStore) writesFor(key string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.writes[key]...)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/dtlattendance/internal/attendance"
	"github.com/mmynk/dtlattendance/internal/config"
	"github.com/mmynk/dtlattendance/internal/storage"
)

// session is an initialized Store over the configured storage backend.
type session struct {
	cfg   config.Config
	kv    storage.Store
	store *attendance.Store
}

// openSession opens storage, builds the Store and loads persisted state.
func openSession(ctx context.Context, cfg config.Config, opts ...attendance.Option) (*session, error) {
	kv, err := cfg.OpenStorage()
	if err != nil {
		return nil, err
	}

	base := []attendance.Option{
		attendance.WithLogger(slog.Default()),
		attendance.WithWriteTimeout(cfg.WriteTimeout),
	}
	store := attendance.New(kv, append(base, opts...)...)
	store.Initialize(ctx)

	return &session{cfg: cfg, kv: kv, store: store}, nil
}

// Close waits for pending writes, then closes storage.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.cfg.WriteTimeout)
	defer cancel()

	var errs []error
	if err := s.store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush attendance: %w", err))
	}
	if err := s.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}

// withSession runs fn against a fresh session and closes it afterwards.
func withSession(ctx context.Context, opts *RootOptions, fn func(*attendance.Store) error) (err error) {
	s, err := openSession(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s.store)
}

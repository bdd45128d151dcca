package attendance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmynk/dtlattendance/internal/models"
)

// State is the persisted portion of a Store.
type State struct {
	Children   []models.Child
	Attendance models.AttendanceIndex
}

// emptyState returns the defaults used when nothing (usable) is stored.
func emptyState() State {
	return State{
		Children:   []models.Child{},
		Attendance: models.AttendanceIndex{},
	}
}

// LoadError reports which key could not be read or decoded.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the persisted roster and attendance index. Missing keys yield
// empty defaults. The first read or decode failure is returned as a
// *LoadError; Load never mutates the Store.
func (s *Store) Load(ctx context.Context) (State, error) {
	s.mustBeWired()
	state := emptyState()

	if err := s.loadKey(ctx, ChildrenKey, &state.Children); err != nil {
		return emptyState(), err
	}
	if err := s.loadKey(ctx, AttendanceKey, &state.Attendance); err != nil {
		return emptyState(), err
	}

	// A stored JSON null decodes to nil; keep the non-nil defaults.
	if state.Children == nil {
		state.Children = []models.Child{}
	}
	if state.Attendance == nil {
		state.Attendance = models.AttendanceIndex{}
	}
	for date, ids := range state.Attendance {
		if ids == nil {
			state.Attendance[date] = []string{}
		}
	}
	return state, nil
}

func (s *Store) loadKey(ctx context.Context, key string, dst any) error {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return &LoadError{Key: key, Err: err}
	}
	if !found {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &LoadError{Key: key, Err: err}
	}
	return nil
}

// Initialize loads persisted state once and applies it. Any load failure
// leaves the Store at its empty defaults. Later calls do nothing.
//
// Operations issued before Initialize returns act on the empty defaults, and
// their effects are replaced when the loaded state is applied.
func (s *Store) Initialize(ctx context.Context) {
	s.mustBeWired()
	s.initOnce.Do(func() {
		state, err := s.Load(ctx)
		if err != nil {
			s.logger.Warn("Failed to load persisted attendance, starting empty", "error", err)
			state = emptyState()
		}
		s.apply(state)
	})
}

func (s *Store) apply(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.children = state.Children
	s.index = state.Attendance
	s.loaded = true
	s.metrics.rosterSize.Set(float64(len(s.children)))

	s.logger.Info("Attendance loaded",
		"children", len(s.children),
		"dates", len(s.index),
	)
}

// Loaded reports whether Initialize has applied persisted state.
func (s *Store) Loaded() bool {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

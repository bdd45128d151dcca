package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/dtlattendance/internal/datekey"
	"github.com/mmynk/dtlattendance/internal/ident"
	"github.com/mmynk/dtlattendance/internal/models"
	"github.com/mmynk/dtlattendance/internal/storage"
)

// Storage keys for the two persisted blobs.
const (
	ChildrenKey   = "children"
	AttendanceKey = "attendance"
)

// recentLimit is how many recently marked children a Dashboard lists.
const recentLimit = 5

const defaultWriteTimeout = 5 * time.Second

// ErrEmptyName is returned by ValidateName for blank names.
var ErrEmptyName = errors.New("child name is required")

// ValidateName rejects names that are empty after trimming. The Store itself
// accepts any name; callers adding children from user input check first.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Store owns the roster and the attendance index.
type Store struct {
	mu       sync.Mutex
	children []models.Child
	index    models.AttendanceIndex
	loaded   bool
	initOnce sync.Once

	kv      storage.Store
	clock   datekey.Clock
	ids     ident.Generator
	logger  *slog.Logger
	metrics *Metrics

	writeTimeout     time.Duration
	childrenWriter   *keyWriter
	attendanceWriter *keyWriter
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to compute today's date key.
func WithClock(c datekey.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics sets the metrics collectors. Defaults to unregistered collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithIDGenerator sets the generator for child and tag ids.
func WithIDGenerator(g ident.Generator) Option {
	return func(s *Store) { s.ids = g }
}

// WithWriteTimeout bounds each background write. Defaults to 5s.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

// New creates a Store persisting to kv. The Store starts empty; call
// Initialize to apply previously persisted state.
func New(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		children:     []models.Child{},
		index:        models.AttendanceIndex{},
		kv:           kv,
		clock:        datekey.RealClock{},
		ids:          ident.Random,
		logger:       slog.Default(),
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = defaultWriteTimeout
	}

	s.childrenWriter = newKeyWriter(ChildrenKey, kv, s.writeTimeout, s.writeDone)
	s.attendanceWriter = newKeyWriter(AttendanceKey, kv, s.writeTimeout, s.writeDone)
	return s
}

// mustBeWired panics when a Store method is reached through a nil pointer.
func (s *Store) mustBeWired() {
	if s == nil {
		panic("attendance: Store used before being created with attendance.New")
	}
}

// Today returns the current date key.
func (s *Store) Today() string {
	s.mustBeWired()
	return datekey.Today(s.clock)
}

// Children returns a copy of the roster in insertion order.
func (s *Store) Children() []models.Child {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Child{}, s.children...)
}

// Child looks up a child by id.
func (s *Store) Child(childID string) (models.Child, bool) {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(childID); i >= 0 {
		return s.children[i], true
	}
	return models.Child{}, false
}

// AttendanceByDate returns a copy of the whole attendance index.
func (s *Store) AttendanceByDate() models.AttendanceIndex {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Clone()
}

// AddChild appends a new child to the roster. An empty tagID is replaced
// with a generated one.
func (s *Store) AddChild(name, tagID string) models.Child {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()

	child := s.newChildLocked(name, tagID)
	s.children = append(s.children, child)
	s.persistChildrenLocked()

	s.metrics.observeOp("add_child")
	s.logger.Info("Child added", "child_id", child.ID, "roster_size", len(s.children))
	return child
}

// ImportEntry describes one child to add with ImportChildren.
type ImportEntry struct {
	Name  string `yaml:"name" json:"name"`
	TagID string `yaml:"nfcId" json:"nfcId"`
}

// ImportChildren appends several children in order with a single roster write.
func (s *Store) ImportChildren(entries []ImportEntry) []models.Child {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]models.Child, 0, len(entries))
	for _, e := range entries {
		child := s.newChildLocked(e.Name, e.TagID)
		s.children = append(s.children, child)
		added = append(added, child)
	}
	if len(added) > 0 {
		s.persistChildrenLocked()
	}

	s.metrics.observeOp("import_children")
	s.logger.Info("Children imported", "count", len(added), "roster_size", len(s.children))
	return added
}

func (s *Store) newChildLocked(name, tagID string) models.Child {
	child := models.Child{ID: s.ids.Generate("child"), Name: name, TagID: tagID}
	if child.TagID == "" {
		child.TagID = s.ids.Generate("nfc")
	}
	return child
}

// RemoveChild deletes the child from the roster and purges its id from every
// date's presence set. Emptied sets stay in the index. Reports whether a
// roster entry was removed; an unknown id is a no-op.
func (s *Store) RemoveChild(childID string) bool {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.observeOp("remove_child")

	removed := false
	if i := s.indexOfLocked(childID); i >= 0 {
		kept := make([]models.Child, 0, len(s.children)-1)
		kept = append(kept, s.children[:i]...)
		kept = append(kept, s.children[i+1:]...)
		s.children = kept
		removed = true
		s.persistChildrenLocked()
	}

	// Ids marked through TogglePresentToday may not be on the roster, so the
	// index is purged regardless.
	purged := false
	for date, ids := range s.index {
		if !slices.Contains(ids, childID) {
			continue
		}
		s.index[date] = withoutID(ids, childID)
		purged = true
	}
	if purged {
		s.persistAttendanceLocked()
	}

	if removed || purged {
		s.logger.Info("Child removed", "child_id", childID, "on_roster", removed, "roster_size", len(s.children))
	}
	return removed
}

// TogglePresentToday flips the child's membership in today's presence set
// and returns the new membership. The id is not checked against the roster.
func (s *Store) TogglePresentToday(childID string) bool {
	s.mustBeWired()
	today := datekey.Today(s.clock)

	s.mu.Lock()
	defer s.mu.Unlock()

	present := s.index[today]
	nowPresent := !slices.Contains(present, childID)
	if nowPresent {
		s.index[today] = append(append([]string{}, present...), childID)
	} else {
		s.index[today] = withoutID(present, childID)
	}
	s.persistAttendanceLocked()

	s.metrics.observeOp("toggle_present")
	s.logger.Info("Presence toggled", "child_id", childID, "date", today, "present", nowPresent)
	return nowPresent
}

// MarkPresentByTag marks the first roster child whose tag matches tagID as
// present today. Matching ignores case and surrounding whitespace. Marking an
// already present child changes nothing and reports AlreadyMarked.
func (s *Store) MarkPresentByTag(tagID string) models.MarkResult {
	s.mustBeWired()
	today := datekey.Today(s.clock)
	want := normalizeTag(tagID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.observeOp("mark_by_tag")

	for _, c := range s.children {
		if normalizeTag(c.TagID) != want {
			continue
		}
		child := c
		present := s.index[today]
		if slices.Contains(present, child.ID) {
			s.logger.Info("Child already marked present", "child_id", child.ID, "date", today)
			return models.MarkResult{Child: &child, AlreadyMarked: true}
		}
		s.index[today] = append(append([]string{}, present...), child.ID)
		s.persistAttendanceLocked()
		s.logger.Info("Child marked present", "child_id", child.ID, "date", today)
		return models.MarkResult{Child: &child}
	}

	s.logger.Info("No child matches tag", "tag", strings.TrimSpace(tagID))
	return models.MarkResult{}
}

// PresentIDsForDate returns the ids present on date in the order they were
// marked. A date with no records yields an empty, non-nil slice.
func (s *Store) PresentIDsForDate(date string) []string {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.index[date]...)
}

// Dashboard summarizes date: roster size, number present, and the children
// among the last few marked who are still on the roster.
func (s *Store) Dashboard(date string) models.Dashboard {
	s.mustBeWired()
	s.mu.Lock()
	defer s.mu.Unlock()

	present := s.index[date]
	tail := present
	if len(tail) > recentLimit {
		tail = tail[len(tail)-recentLimit:]
	}

	recent := make([]models.Child, 0, len(tail))
	for _, id := range tail {
		if i := s.indexOfLocked(id); i >= 0 {
			recent = append(recent, s.children[i])
		}
	}

	return models.Dashboard{
		Date:         date,
		ChildCount:   len(s.children),
		PresentCount: len(present),
		Recent:       recent,
	}
}

// Flush waits until every scheduled write has completed or ctx is done.
func (s *Store) Flush(ctx context.Context) error {
	s.mustBeWired()
	if err := s.childrenWriter.flush(ctx); err != nil {
		return err
	}
	return s.attendanceWriter.flush(ctx)
}

// Close flushes pending writes and stops persisting further mutations.
// The underlying storage.Store is left open.
func (s *Store) Close(ctx context.Context) error {
	s.mustBeWired()
	err := s.Flush(ctx)
	s.childrenWriter.close()
	s.attendanceWriter.close()
	return err
}

func (s *Store) indexOfLocked(childID string) int {
	for i, c := range s.children {
		if c.ID == childID {
			return i
		}
	}
	return -1
}

func (s *Store) persistChildrenLocked() {
	s.metrics.rosterSize.Set(float64(len(s.children)))
	s.submitLocked(s.childrenWriter, s.children)
}

func (s *Store) persistAttendanceLocked() {
	s.submitLocked(s.attendanceWriter, s.index)
}

func (s *Store) submitLocked(w *keyWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to encode state", "key", w.key, "error", err)
		return
	}
	if !w.submit(data) {
		s.logger.Debug("Store closed, write dropped", "key", w.key)
	}
}

func (s *Store) writeDone(key string, err error) {
	s.metrics.observeWrite(key, err)
	if err != nil {
		s.logger.Warn("Persist write failed", "key", key, "error", err)
		return
	}
	s.logger.Debug("Persisted", "key", key)
}

// withoutID returns a new slice with every occurrence of id removed.
// The result is never nil so emptied sets encode as [].
func withoutID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

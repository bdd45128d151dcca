package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dtlattendance/internal/models"
	"github.com/mmynk/dtlattendance/internal/storage/memory"
)

func TestAddChild(t *testing.T) {
	s, _ := newTestStore(t, memory.New())

	t.Run("appends in insertion order", func(t *testing.T) {
		names := []string{"Ann", "Ben", "Cara", "Dev"}
		for i, name := range names {
			s.AddChild(name, "")
			require.Len(t, s.Children(), i+1)
		}

		children := s.Children()
		for i, name := range names {
			assert.Equal(t, name, children[i].Name)
		}
	})

	t.Run("generates tag when omitted", func(t *testing.T) {
		c := s.AddChild("Eli", "")
		assert.Regexp(t, `^nfc_\d+$`, c.TagID)
		assert.Regexp(t, `^child_\d+$`, c.ID)
	})

	t.Run("keeps provided tag as given", func(t *testing.T) {
		c := s.AddChild("Fay", " ABC123 ")
		assert.Equal(t, " ABC123 ", c.TagID)
	})

	t.Run("ids are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for _, c := range s.Children() {
			assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
			seen[c.ID] = true
		}
	})
}

func TestValidateName(t *testing.T) {
	assert.ErrorIs(t, ValidateName(""), ErrEmptyName)
	assert.ErrorIs(t, ValidateName("   "), ErrEmptyName)
	assert.NoError(t, ValidateName("Ann"))
}

func TestImportChildren(t *testing.T) {
	kv := newRecordingStore()
	s, _ := newTestStore(t, kv)

	added := s.ImportChildren([]ImportEntry{
		{Name: "Ann", TagID: "t1"},
		{Name: "Ben"},
	})
	flush(t, s)

	require.Len(t, added, 2)
	assert.Equal(t, "t1", added[0].TagID)
	assert.NotEmpty(t, added[1].TagID)
	assert.Equal(t, added, s.Children())
	assert.Len(t, kv.writesFor(ChildrenKey), 1, "import should write the roster once")
}

func TestRemoveChild(t *testing.T) {
	t.Run("unknown id is a no-op", func(t *testing.T) {
		kv := newRecordingStore()
		s, _ := newTestStore(t, kv)
		ann := s.AddChild("Ann", "t1")
		s.TogglePresentToday(ann.ID)
		flush(t, s)

		beforeChildren := s.Children()
		beforeIndex := s.AttendanceByDate()
		beforeWrites := len(kv.writesFor(ChildrenKey)) + len(kv.writesFor(AttendanceKey))

		assert.False(t, s.RemoveChild("child_missing"))
		flush(t, s)

		assert.Equal(t, beforeChildren, s.Children())
		assert.Equal(t, beforeIndex, s.AttendanceByDate())
		assert.Equal(t, beforeWrites, len(kv.writesFor(ChildrenKey))+len(kv.writesFor(AttendanceKey)))
	})

	t.Run("purges id from every date and keeps emptied sets", func(t *testing.T) {
		s, clock := newTestStore(t, memory.New())
		ann := s.AddChild("Ann", "t1")
		ben := s.AddChild("Ben", "t2")

		s.TogglePresentToday(ann.ID)
		s.TogglePresentToday(ben.ID)
		clock.Set(testDay.Add(24 * time.Hour))
		s.TogglePresentToday(ann.ID)

		require.True(t, s.RemoveChild(ann.ID))

		assert.Equal(t, []models.Child{ben}, s.Children())
		idx := s.AttendanceByDate()
		assert.Equal(t, []string{ben.ID}, idx["2026-10-19"])
		require.Contains(t, idx, "2026-10-20")
		assert.Empty(t, idx["2026-10-20"])
		for date, ids := range idx {
			assert.NotContains(t, ids, ann.ID, "date %s still references removed child", date)
		}
	})

	t.Run("purges dangling ids not on the roster", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		s.TogglePresentToday("child_ghost")
		require.Equal(t, []string{"child_ghost"}, s.PresentIDsForDate("2026-10-19"))

		assert.False(t, s.RemoveChild("child_ghost"))
		assert.Empty(t, s.PresentIDsForDate("2026-10-19"))
	})
}

func TestTogglePresentToday(t *testing.T) {
	s, _ := newTestStore(t, memory.New())
	ann := s.AddChild("Ann", "t1")
	ben := s.AddChild("Ben", "t2")
	s.TogglePresentToday(ben.ID)
	before := s.PresentIDsForDate("2026-10-19")

	t.Run("pair restores original set", func(t *testing.T) {
		assert.True(t, s.TogglePresentToday(ann.ID))
		assert.Contains(t, s.PresentIDsForDate("2026-10-19"), ann.ID)

		assert.False(t, s.TogglePresentToday(ann.ID))
		assert.Equal(t, before, s.PresentIDsForDate("2026-10-19"))
	})

	t.Run("unknown id is permitted", func(t *testing.T) {
		assert.True(t, s.TogglePresentToday("child_unknown"))
		assert.Contains(t, s.PresentIDsForDate("2026-10-19"), "child_unknown")
		assert.Len(t, s.Children(), 2)
	})
}

func TestMarkPresentByTag(t *testing.T) {
	t.Run("scenario: mark then re-mark", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		ann := s.AddChild("Ann", "t1")

		first := s.MarkPresentByTag("T1")
		require.NotNil(t, first.Child)
		assert.Equal(t, ann, *first.Child)
		assert.False(t, first.AlreadyMarked)
		assert.Equal(t, []string{ann.ID}, s.PresentIDsForDate("2026-10-19"))

		second := s.MarkPresentByTag("t1")
		require.NotNil(t, second.Child)
		assert.Equal(t, ann.ID, second.Child.ID)
		assert.True(t, second.AlreadyMarked)
		assert.Equal(t, []string{ann.ID}, s.PresentIDsForDate("2026-10-19"))

		// Removing afterwards empties today's set but keeps the date.
		s.RemoveChild(ann.ID)
		assert.Empty(t, s.Children())
		idx := s.AttendanceByDate()
		require.Contains(t, idx, "2026-10-19")
		assert.Empty(t, idx["2026-10-19"])
	})

	t.Run("ignores case and surrounding whitespace", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		c := s.AddChild("Ann", "abc123")

		res := s.MarkPresentByTag(" ABC123 ")
		require.NotNil(t, res.Child)
		assert.Equal(t, c.ID, res.Child.ID)
	})

	t.Run("folds non-ascii case", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		c := s.AddChild("Zoë", "ÄBC-Ω")

		res := s.MarkPresentByTag("äbc-ω")
		require.NotNil(t, res.Child)
		assert.Equal(t, c.ID, res.Child.ID)
	})

	t.Run("no match mutates nothing", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		s.AddChild("Ann", "t1")

		res := s.MarkPresentByTag("zzz")
		assert.Nil(t, res.Child)
		assert.False(t, res.AlreadyMarked)
		assert.Empty(t, s.AttendanceByDate())
	})

	t.Run("first roster match wins on duplicate tags", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		first := s.AddChild("Ann", "dup")
		s.AddChild("Ben", "DUP")

		res := s.MarkPresentByTag("Dup")
		require.NotNil(t, res.Child)
		assert.Equal(t, first.ID, res.Child.ID)
		assert.Equal(t, []string{first.ID}, s.PresentIDsForDate("2026-10-19"))
	})

	t.Run("new day starts unmarked", func(t *testing.T) {
		s, clock := newTestStore(t, memory.New())
		s.AddChild("Ann", "t1")
		s.MarkPresentByTag("t1")

		clock.Set(testDay.Add(24 * time.Hour))
		res := s.MarkPresentByTag("t1")
		require.NotNil(t, res.Child)
		assert.False(t, res.AlreadyMarked)
		assert.Len(t, s.PresentIDsForDate("2026-10-19"), 1)
		assert.Len(t, s.PresentIDsForDate("2026-10-20"), 1)
	})

	t.Run("returned child is a copy", func(t *testing.T) {
		s, _ := newTestStore(t, memory.New())
		s.AddChild("Ann", "t1")

		res := s.MarkPresentByTag("t1")
		res.Child.Name = "changed"
		assert.Equal(t, "Ann", s.Children()[0].Name)
	})
}

func TestPresentIDsForDate(t *testing.T) {
	s, _ := newTestStore(t, memory.New())

	ids := s.PresentIDsForDate("1999-01-01")
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	ann := s.AddChild("Ann", "t1")
	s.TogglePresentToday(ann.ID)
	got := s.PresentIDsForDate("2026-10-19")
	got[0] = "mutated"
	assert.Equal(t, []string{ann.ID}, s.PresentIDsForDate("2026-10-19"))
}

func TestDashboard(t *testing.T) {
	s, _ := newTestStore(t, memory.New())

	var kids []models.Child
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		kids = append(kids, s.AddChild(name, ""))
	}
	for _, c := range kids {
		s.TogglePresentToday(c.ID)
	}
	s.TogglePresentToday("child_ghost")

	d := s.Dashboard(s.Today())
	assert.Equal(t, "2026-10-19", d.Date)
	assert.Equal(t, 6, d.ChildCount)
	assert.Equal(t, 7, d.PresentCount)

	// The last five marked ids are C..F plus the ghost, which is skipped.
	require.Len(t, d.Recent, 4)
	assert.Equal(t, []string{"C", "D", "E", "F"}, []string{d.Recent[0].Name, d.Recent[1].Name, d.Recent[2].Name, d.Recent[3].Name})

	empty := s.Dashboard("2000-01-01")
	assert.Equal(t, 0, empty.PresentCount)
	assert.Empty(t, empty.Recent)
}

func TestNilStorePanics(t *testing.T) {
	var s *Store
	assert.PanicsWithValue(t, "attendance: Store used before being created with attendance.New", func() {
		s.AddChild("Ann", "")
	})
	assert.Panics(t, func() { s.MarkPresentByTag("t1") })
}

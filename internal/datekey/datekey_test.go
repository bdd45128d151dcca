package datekey

import (
	"errors"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"zero padded", time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC), "2026-03-07"},
		{"last second of day", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), "2026-12-31"},
		{"first instant of day", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2027-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.in); got != tt.want {
				t.Errorf("Key() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestToday_UsesLocalZone(t *testing.T) {
	// 23:30 local on Oct 19 is already Oct 20 in UTC for zones west of UTC,
	// so compare against the local rendering.
	local := time.Date(2026, 10, 19, 23, 30, 0, 0, time.Local)
	clock := NewFixedClock(local.UTC())

	if got := Today(clock); got != "2026-10-19" {
		t.Errorf("Today() = %s, want 2026-10-19", got)
	}
}

func TestFixedClock_Set(t *testing.T) {
	clock := NewFixedClock(time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local))
	before := Today(clock)

	clock.Set(time.Date(2026, 10, 20, 0, 1, 0, 0, time.Local))
	after := Today(clock)

	if before != "2026-10-19" || after != "2026-10-20" {
		t.Errorf("got %s -> %s, want 2026-10-19 -> 2026-10-20", before, after)
	}
}

func TestValidate(t *testing.T) {
	valid := []string{"2026-10-19", "2024-02-29"}
	for _, d := range valid {
		if err := Validate(d); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", d, err)
		}
	}

	invalid := []string{"", "2026-1-9", "2026/10/19", "2025-02-29", "today", "2026-10-19T00:00:00Z"}
	for _, d := range invalid {
		err := Validate(d)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidDate", d, err)
		}
	}
}

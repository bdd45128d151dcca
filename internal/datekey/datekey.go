// Package datekey derives the calendar-day keys attendance is bucketed by.
//
// Keys are zero-padded YYYY-MM-DD strings in the device's local time zone.
// No server clock is consulted, so two devices with skewed clocks can file
// the same moment under different days.
package datekey

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Layout is the time layout of a date key.
const Layout = "2006-01-02"

// ErrInvalidDate is returned by Validate for strings that are not date keys.
var ErrInvalidDate = errors.New("invalid date key")

// Clock abstracts the current time so "today" can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock returns a settable instant. Safe for concurrent use.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock returns a FixedClock reading t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

// Now returns the pinned instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Key formats t as a date key in t's own location.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the date key for the clock's current local time.
func Today(c Clock) string {
	return Key(c.Now().Local())
}

// Validate checks that date is a well-formed, zero-padded date key.
func Validate(date string) error {
	t, err := time.Parse(Layout, date)
	if err != nil || t.Format(Layout) != date {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

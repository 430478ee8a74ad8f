package clock

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker reads the system clock in a fixed location.
//
// Readings are truncated to the millisecond, the resolution expiry
// timestamps are persisted with.
type TimeClocker struct {
	loc *time.Location
}

// New returns a TimeClocker in UTC.
func New() *TimeClocker {
	return &TimeClocker{loc: time.UTC}
}

// NewIn returns a TimeClocker in loc. A nil loc means UTC.
func NewIn(loc *time.Location) *TimeClocker {
	if loc == nil {
		loc = time.UTC
	}
	return &TimeClocker{loc: loc}
}

func (c *TimeClocker) Now() time.Time {
	return time.Now().In(c.loc).Truncate(time.Millisecond)
}

// Fixed is a Clocker that only moves when told to. Safe for concurrent use.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t, backwards included.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d and returns the new reading.
func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}

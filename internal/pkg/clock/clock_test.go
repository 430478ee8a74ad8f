package clock

import (
	"testing"
	"time"
)

func TestTimeClocker_Now(t *testing.T) {

	// Arrange
	jakarta := time.FixedZone("WIB", 7*3600)
	c := NewIn(jakarta)

	// Act
	got := c.Now()

	// Assert
	if got.Location() != jakarta {
		t.Fatalf("location = %v, want %v", got.Location(), jakarta)
	}
	if got.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected millisecond truncation, got %v", got)
	}
	if d := time.Since(got); d < 0 || d > time.Minute {
		t.Fatalf("reading is off by %v", d)
	}
}

func TestNewIn_NilLocationIsUTC(t *testing.T) {

	// Act
	got := NewIn(nil).Now()

	// Assert
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
}

func TestFixed(t *testing.T) {

	// Arrange
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFixed(start)

	// Act
	first := f.Now()
	advanced := f.Advance(5 * time.Minute)
	f.Set(start.Add(-time.Hour))

	// Assert
	if !first.Equal(start) {
		t.Fatalf("Now = %v, want %v", first, start)
	}
	if !advanced.Equal(start.Add(5 * time.Minute)) {
		t.Fatalf("Advance = %v", advanced)
	}
	if !f.Now().Equal(start.Add(-time.Hour)) {
		t.Fatalf("Set did not move the clock back, got %v", f.Now())
	}
}

package quote

import (
	"testing"
	"time"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func TestDeadlineClockNext(t *testing.T) {
	now := time.Unix(1700000000, 0)
	dc, err := NewDeadlineClock(fixedClock{now: now}, DefaultDeadlineWindow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := now.Add(20 * time.Minute)
	if got := dc.Next(); !got.Equal(want) {
		t.Fatalf("deadline mismatch: got %s want %s", got, want)
	}
}

func TestDeadlineClockRejectsBadWindow(t *testing.T) {
	if _, err := NewDeadlineClock(fixedClock{}, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
	if _, err := NewDeadlineClock(fixedClock{}, -time.Second); err == nil {
		t.Fatalf("expected error for negative window")
	}
}

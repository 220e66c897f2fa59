package quote

import (
	"fmt"
	"time"
)

// DefaultDeadlineWindow bounds a trade's validity when no window is
// configured: 20 minutes, the conventional router default.
const DefaultDeadlineWindow = 20 * time.Minute

// Clock supplies the current time. Injected so tests control it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// DeadlineClock produces absolute expiry timestamps used both as the
// on-chain deadline argument and as the local confirmation timeout.
type DeadlineClock struct {
	clock  Clock
	window time.Duration
}

// NewDeadlineClock validates the window and builds a DeadlineClock.
// A nil clock falls back to the system clock.
func NewDeadlineClock(clock Clock, window time.Duration) (DeadlineClock, error) {
	if window <= 0 {
		return DeadlineClock{}, fmt.Errorf("deadline window must be greater than zero: %s", window)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return DeadlineClock{clock: clock, window: window}, nil
}

// Next returns the expiry for a trade started now.
func (d DeadlineClock) Next() time.Time {
	return d.clock.Now().Add(d.window)
}

// Window returns the configured validity window.
func (d DeadlineClock) Window() time.Duration {
	return d.window
}

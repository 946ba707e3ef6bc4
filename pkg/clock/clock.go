// Package clock abstracts time so staleness arithmetic and timer scheduling
// can be driven deterministically in tests.
package clock

import "time"

// Clock provides the current time and one-shot timers. Production code uses
// RealClock; tests inject a FakeClock and advance it manually.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc schedules f to run once after d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// timer from firing.
	Stop() bool
}

// RealClock delegates to the time package.
type RealClock struct{}

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() RealClock {
	return RealClock{}
}

// Now returns time.Now().
func (RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}

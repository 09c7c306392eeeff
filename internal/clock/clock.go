// Package clock abstracts wall time so timed gates can be tested without
// waiting. Production code uses Real(); tests use Fake().
package clock

import "time"

// Clock is the subset of the time package the study needs
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can cancel
	// the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback
type Timer interface {
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

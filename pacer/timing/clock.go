package timing

import (
	"runtime"
	"time"
)

// clock is the time source the wait primitives and the pacer run against.
// Every timestamp must carry a monotonic reading.
type clock interface {
	Now() time.Time
	// Sleep suspends the calling thread for roughly d. It may overshoot.
	Sleep(d time.Duration)
	// Yield is called once per spin iteration.
	Yield()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) { suspend(d) }

func (systemClock) Yield() { runtime.Gosched() }

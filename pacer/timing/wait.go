package timing

import "time"

// coarseSpinMargin is the part of every coarse wait that is spent spinning.
// OS sleep primitives regularly overshoot by a millisecond or more.
const coarseSpinMargin = time.Millisecond

// SleepUntil blocks until target and returns the time at which it resumed.
//
// It suspends the thread for all but the last millisecond of the wait and
// spins for the remainder. If target has already passed it returns the
// current time without suspending.
func SleepUntil(target time.Time) time.Time {
	return sleepUntil(systemClock{}, target, coarseSpinMargin)
}

// SleepUntilHighPrecision is like SleepUntil but keeps a much smaller spin
// margin on platforms with fine-grained sleep (250µs on unix, 1ms elsewhere).
// It is more accurate and burns more CPU.
func SleepUntilHighPrecision(target time.Time) time.Time {
	return sleepUntil(systemClock{}, target, highPrecisionSpinMargin)
}

func sleepUntil(c clock, target time.Time, margin time.Duration) time.Time {
	now := c.Now()
	if !now.Before(target) {
		return now
	}

	if gap := target.Sub(now); gap > margin {
		c.Sleep(gap - margin)
	}

	return busyWaitUntil(c, target)
}

func busyWaitUntil(c clock, target time.Time) time.Time {
	for {
		now := c.Now()
		if !now.Before(target) {
			return now
		}
		c.Yield()
	}
}

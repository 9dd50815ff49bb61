package timing

import (
	"math"
	"time"
)

// Limiter paces a loop. Frame is called once per iteration.
type Limiter interface {
	// Frame blocks until the next scheduled instant and returns the time
	// elapsed since the previous call.
	Frame() time.Duration

	// Reset re-anchors the schedule to now, useful after pauses.
	Reset()
}

// DefaultRate is the target rate of a pacer built with defaults.
const DefaultRate = 60.0

// NewUncappedLimiter returns a limiter that never waits and only measures
// the time between calls.
func NewUncappedLimiter() Limiter {
	return NewPacer().SetPeriod(0)
}

// PeriodFromRate converts a rate in calls per second into a period.
// A rate of 0 means uncapped and yields a zero period.
func PeriodFromRate(rate float64) (time.Duration, error) {
	if rate == 0 {
		return 0, nil
	}
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, ErrInvalidRate
	}

	period := float64(time.Second) / rate
	if period >= math.MaxInt64 {
		return 0, ErrInvalidRate
	}
	return time.Duration(period), nil
}

// RateFromPeriod is the inverse of PeriodFromRate. A zero period yields 0.
func RateFromPeriod(period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	return float64(time.Second) / float64(period)
}

package timing

import (
	"math"
	"time"
)

// Snapshot holds the statistics of one completed logging interval.
type Snapshot struct {
	deltaAvg time.Duration
	frames   uint64
	resyncs  uint64
}

// NewSnapshot builds a snapshot from recorded values, e.g. to replay
// statistics collected elsewhere.
func NewSnapshot(deltaAvg time.Duration, frames, resyncs uint64) Snapshot {
	return Snapshot{deltaAvg: deltaAvg, frames: frames, resyncs: resyncs}
}

// DeltaTimeAvg is the frame time averaged over the interval.
func (s Snapshot) DeltaTimeAvg() time.Duration {
	return s.deltaAvg
}

// DeltaTimeAvgMs is DeltaTimeAvg in milliseconds.
func (s Snapshot) DeltaTimeAvgMs() float64 {
	return s.deltaAvg.Seconds() * 1000
}

// FPSAverage is the rate averaged over the interval. It is +Inf when the
// average frame time is zero.
func (s Snapshot) FPSAverage() float64 {
	if s.deltaAvg <= 0 {
		return math.Inf(1)
	}
	return 1 / s.deltaAvg.Seconds()
}

// Frames is the number of pacing calls in the interval. Always at least 1.
func (s Snapshot) Frames() uint64 {
	return s.frames
}

// Resyncs is the number of pacing calls in the interval that gave up on
// the original schedule because they lagged more than the slack.
func (s Snapshot) Resyncs() uint64 {
	return s.resyncs
}

// Package stats aggregates the output of a pacer over longer spans than a
// single logging interval.
package stats

import (
	"math"
	"time"

	"github.com/eapache/queue"

	"github.com/valerio/go-pacer/pacer/timing"
)

// History keeps the most recent snapshots, dropping the oldest once full.
type History struct {
	snapshots *queue.Queue
	capacity  int
}

// Summary aggregates every snapshot currently held by a History.
type Summary struct {
	Count         int
	Frames        uint64
	Resyncs       uint64
	MinFPS        float64
	MaxFPS        float64
	MeanFPS       float64
	MeanFrameTime time.Duration
	// StdDevFrameTime is the spread of the per-snapshot averages.
	StdDevFrameTime time.Duration
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		snapshots: queue.New(),
		capacity:  capacity,
	}
}

func (h *History) Add(s timing.Snapshot) {
	if h.snapshots.Length() == h.capacity {
		h.snapshots.Remove()
	}
	h.snapshots.Add(s)
}

func (h *History) Len() int {
	return h.snapshots.Length()
}

func (h *History) Cap() int {
	return h.capacity
}

// Latest returns the most recent snapshot, if any.
func (h *History) Latest() (timing.Snapshot, bool) {
	if h.snapshots.Length() == 0 {
		return timing.Snapshot{}, false
	}
	return h.snapshots.Get(-1).(timing.Snapshot), true
}

// Recent returns up to n snapshots, oldest first. n <= 0 returns all.
func (h *History) Recent(n int) []timing.Snapshot {
	count := h.snapshots.Length()
	if n > 0 && n < count {
		count = n
	}
	if count == 0 {
		return nil
	}

	result := make([]timing.Snapshot, count)
	offset := h.snapshots.Length() - count
	for i := range result {
		result[i] = h.snapshots.Get(offset + i).(timing.Snapshot)
	}
	return result
}

func (h *History) Summary() Summary {
	snapshots := h.Recent(0)
	if len(snapshots) == 0 {
		return Summary{}
	}

	sum := Summary{
		Count:  len(snapshots),
		MinFPS: math.Inf(1),
		MaxFPS: math.Inf(-1),
	}

	// frame time weighted by the frames of each window
	var total time.Duration
	for _, s := range snapshots {
		sum.Frames += s.Frames()
		sum.Resyncs += s.Resyncs()
		total += s.DeltaTimeAvg() * time.Duration(s.Frames())
		sum.MinFPS = math.Min(sum.MinFPS, s.FPSAverage())
		sum.MaxFPS = math.Max(sum.MaxFPS, s.FPSAverage())
	}
	if sum.Frames > 0 {
		sum.MeanFrameTime = total / time.Duration(sum.Frames)
	}
	sum.MeanFPS = math.Inf(1)
	if sum.MeanFrameTime > 0 {
		sum.MeanFPS = timing.RateFromPeriod(sum.MeanFrameTime)
	}

	var variance float64
	for _, s := range snapshots {
		d := float64(s.DeltaTimeAvg() - sum.MeanFrameTime)
		variance += d * d
	}
	sum.StdDevFrameTime = time.Duration(math.Sqrt(variance / float64(len(snapshots))))

	return sum
}

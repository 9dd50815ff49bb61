package loop

import "time"

// SimulatedWorkload stands in for real per-frame work. It burns Work of CPU
// on every frame and additionally sleeps Stall every StallEvery frames,
// which exercises the catch-up and resync paths of the pacer.
type SimulatedWorkload struct {
	Work       time.Duration
	StallEvery uint64
	Stall      time.Duration
}

func (w SimulatedWorkload) Step(frame uint64, _ time.Duration) {
	if w.Work > 0 {
		burn(w.Work)
	}
	if w.StallEvery > 0 && w.Stall > 0 && frame%w.StallEvery == 0 {
		time.Sleep(w.Stall)
	}
}

func burn(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}

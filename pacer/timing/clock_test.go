package timing

import "time"

// fakeClock only moves when told to. Sleep advances by the requested
// duration plus overshoot, Yield advances by step.
type fakeClock struct {
	now       time.Time
	step      time.Duration
	overshoot time.Duration

	sleeps []time.Duration
	yields int
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Unix(1_700_000_000, 0),
		step: 10 * time.Microsecond,
	}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Sleep(d time.Duration) {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d + f.overshoot)
}

func (f *fakeClock) Yield() {
	f.yields++
	f.now = f.now.Add(f.step)
}

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

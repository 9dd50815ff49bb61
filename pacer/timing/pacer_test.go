package timing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPacer(c *fakeClock, period time.Duration) *Pacer {
	cfg := DefaultConfig()
	cfg.Period = period
	return newPacer(c, cfg)
}

func TestPacer_Defaults(t *testing.T) {
	p := NewPacer()

	assert.Equal(t, DefaultPeriod, p.Period())
	assert.InDelta(t, 60.0, p.Rate(), 1e-4)
	assert.Equal(t, 100*time.Millisecond, p.LogInterval())
	assert.Equal(t, uint32(2), p.MaxDelayPeriods())
	assert.True(t, p.HighPrecision())
	assert.Zero(t, p.FrameCount())
}

func TestPacer_SteadyStateDoesNotDrift(t *testing.T) {
	for _, highPrecision := range []bool{true, false} {
		name := "coarse"
		if highPrecision {
			name = "high_precision"
		}
		t.Run(name, func(t *testing.T) {
			c := newFakeClock()
			period := 10 * time.Millisecond
			p := newTestPacer(c, period).SetHighPrecision(highPrecision)
			start := c.Now()

			var total time.Duration
			for i := 0; i < 1000; i++ {
				c.Advance(3 * time.Millisecond) // work between calls
				frameTime := p.Frame()
				assert.Equal(t, period, frameTime, "frame %d", i)
				total += frameTime
			}

			assert.Equal(t, 1000*period, total)
			assert.Equal(t, start.Add(1000*period), c.Now())
			assert.Equal(t, uint64(1000), p.FrameCount())
			assert.Zero(t, p.Resyncs())
		})
	}
}

func TestPacer_WaitStrategySelection(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 10*time.Millisecond)

	p.Frame()
	require.Len(t, c.sleeps, 1)
	assert.Equal(t, 10*time.Millisecond-highPrecisionSpinMargin, c.sleeps[0])

	p.SetHighPrecision(false)
	p.Frame()
	require.Len(t, c.sleeps, 2)
	assert.Equal(t, 9*time.Millisecond, c.sleeps[1])
}

func TestPacer_CatchUpWithinSlack(t *testing.T) {
	c := newFakeClock()
	period := 10 * time.Millisecond
	p := newTestPacer(c, period) // slack = 20ms

	assert.Equal(t, period, p.Frame())

	// the caller stalls for 25ms, i.e. 15ms past the deadline
	c.Advance(25 * time.Millisecond)

	got := []time.Duration{p.Frame(), p.Frame(), p.Frame(), p.Frame()}
	want := []time.Duration{
		25 * time.Millisecond, // late call, no wait
		0,                     // still behind the original cadence
		5 * time.Millisecond,  // back on the original grid
		period,
	}
	assert.Equal(t, want, got)
	assert.Zero(t, p.Resyncs(), "schedule must not be reset mid catch-up")
}

func TestPacer_ResyncBeyondSlack(t *testing.T) {
	c := newFakeClock()
	period := 10 * time.Millisecond
	p := newTestPacer(c, period)

	p.Frame()
	c.Advance(35 * time.Millisecond) // 25ms past the deadline

	assert.Equal(t, 35*time.Millisecond, p.Frame())
	assert.Equal(t, uint64(1), p.Resyncs())

	// normal pacing resumes from the late call, the backlog is dropped
	for i := 0; i < 5; i++ {
		assert.Equal(t, period, p.Frame())
	}
	assert.Equal(t, uint64(1), p.Resyncs())
}

func TestPacer_SlackExamples(t *testing.T) {
	tests := []struct {
		name       string
		late       time.Duration
		wantResync bool
	}{
		{"20ms late stays on schedule", 20 * time.Millisecond, false},
		{"50ms late resets schedule", 50 * time.Millisecond, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeClock()
			p := newTestPacer(c, DefaultPeriod)
			assert.InDelta(t, 33.33, float64(p.Slack())/float64(time.Millisecond), 0.01)

			c.Advance(p.Period() + tt.late)
			p.Frame()

			if tt.wantResync {
				assert.Equal(t, uint64(1), p.Resyncs())
				assert.Equal(t, p.Period(), p.Frame())
			} else {
				assert.Zero(t, p.Resyncs())
				assert.Less(t, p.Frame(), p.Period())
			}
		})
	}
}

func TestPacer_ZeroPeriodNeverBlocks(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 0)

	for _, gap := range []time.Duration{0, time.Microsecond, 7 * time.Millisecond, time.Second} {
		c.Advance(gap)
		assert.Equal(t, gap, p.Frame())
	}

	assert.Empty(t, c.sleeps)
	assert.Zero(t, c.yields)
	assert.Zero(t, p.Resyncs())
}

func TestPacer_LogCadence(t *testing.T) {
	c := newFakeClock()
	p := newPacer(c, DefaultConfig())

	_, ok := p.Log()
	assert.False(t, ok, "no snapshot before the first interval")

	var snapshots []Snapshot
	for i := 0; i < 60; i++ {
		p.Frame()
		if s, ok := p.Log(); ok {
			snapshots = append(snapshots, s)
		}
	}

	// 100ms is a hair over six periods of 16.666666ms
	require.Len(t, snapshots, 8)
	for _, s := range snapshots {
		assert.Equal(t, uint64(7), s.Frames())
		assert.InDelta(t, 60.0, s.FPSAverage(), 0.01)
		assert.InDelta(t, 16.667, s.DeltaTimeAvgMs(), 0.001)
		assert.Equal(t, DefaultPeriod, s.DeltaTimeAvg())
		assert.Zero(t, s.Resyncs())
	}
}

func TestPacer_LogCountsResyncs(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 10*time.Millisecond)

	p.Frame()
	c.Advance(100 * time.Millisecond)
	p.Frame()

	s, ok := p.Log()
	require.True(t, ok)
	assert.Equal(t, uint64(2), s.Frames())
	assert.Equal(t, uint64(1), s.Resyncs())
	assert.Equal(t, 55*time.Millisecond, s.DeltaTimeAvg())
}

func TestPacer_ZeroLogInterval(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 0).SetLogInterval(0)

	_, ok := p.Log()
	assert.False(t, ok, "no pacing call yet")

	c.Advance(4 * time.Millisecond)
	p.Frame()
	s, ok := p.Log()
	require.True(t, ok)
	assert.Equal(t, uint64(1), s.Frames())
	assert.InDelta(t, 250.0, s.FPSAverage(), 1e-9)

	_, ok = p.Log()
	assert.False(t, ok, "second log without a pacing call")
}

func TestSnapshot_ZeroDurationIsInfiniteRate(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 0).SetLogInterval(0)

	p.Frame()
	s, ok := p.Log()
	require.True(t, ok)
	assert.Zero(t, s.DeltaTimeAvg())
	assert.Zero(t, s.DeltaTimeAvgMs())
	assert.True(t, math.IsInf(s.FPSAverage(), 1))
}

func TestPacer_SetPeriodReanchorsTarget(t *testing.T) {
	c := newFakeClock()
	p := newTestPacer(c, 10*time.Millisecond)

	c.Advance(5 * time.Millisecond)
	p.SetPeriod(20 * time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, p.Frame())
}

func TestPacer_RateRoundTrip(t *testing.T) {
	for _, rate := range []float64{0.5, 1, 24, 30, 59.94, 60, 144, 240, 1000} {
		p := NewPacer().SetRate(rate)
		assert.InDelta(t, 1/rate, p.Period().Seconds(), 1e-9, "rate %v", rate)
		assert.InEpsilon(t, rate, p.Rate(), 1e-6, "rate %v", rate)
	}

	p := NewPacer().SetRate(0)
	assert.Zero(t, p.Period())
	assert.Zero(t, p.Rate())
}

func TestPacer_RejectsInvalidConfiguration(t *testing.T) {
	assert.Panics(t, func() { NewPacer().SetPeriod(-time.Millisecond) })
	assert.Panics(t, func() { NewPacer().SetLogInterval(-time.Millisecond) })
	assert.Panics(t, func() { NewPacer().SetRate(-1) })
	assert.Panics(t, func() { NewPacer().SetRate(math.NaN()) })
	assert.Panics(t, func() { NewPacer().SetRate(math.Inf(1)) })
	assert.Panics(t, func() { NewPacer().SetRate(1e-12) })
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"zero period", func(c *Config) { c.Period = 0 }, nil},
		{"negative period", func(c *Config) { c.Period = -1 }, ErrNegativePeriod},
		{"negative log interval", func(c *Config) { c.LogInterval = -1 }, ErrNegativeLogInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			p, err := New(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg.Period, p.Period())
			assert.Equal(t, cfg.LogInterval, p.LogInterval())
		})
	}
}

func TestPacer_SlackSaturates(t *testing.T) {
	p := NewPacer().SetPeriod(time.Hour).SetMaxDelayPeriods(math.MaxUint32)
	assert.Equal(t, time.Duration(math.MaxInt64), p.Slack())

	assert.Zero(t, NewPacer().SetPeriod(0).Slack())
	assert.Equal(t, 30*time.Millisecond, NewPacer().SetPeriod(10*time.Millisecond).SetMaxDelayPeriods(3).Slack())
}

func TestPacer_Reset(t *testing.T) {
	c := newFakeClock()
	period := 10 * time.Millisecond
	p := newTestPacer(c, period)

	p.Frame()
	p.Frame()
	c.Advance(time.Second) // paused
	p.Reset()

	assert.Equal(t, period, p.Frame())
	assert.Zero(t, p.Resyncs(), "a reset is not a resync")

	for i := 0; i < 9; i++ {
		p.Frame()
	}
	s, ok := p.Log()
	require.True(t, ok)
	assert.Equal(t, uint64(10), s.Frames(), "frames before the reset are not counted")
	assert.Equal(t, period, s.DeltaTimeAvg())
}

func TestUncappedLimiter(t *testing.T) {
	l := NewUncappedLimiter()
	p, ok := l.(*Pacer)
	require.True(t, ok)
	assert.Zero(t, p.Period())

	assert.GreaterOrEqual(t, l.Frame(), time.Duration(0))
}

func TestPacer_RealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("real clock test")
	}

	period := 5 * time.Millisecond
	p := NewPacer().SetPeriod(period)

	var total time.Duration
	for i := 0; i < 20; i++ {
		total += p.Frame()
	}

	assert.GreaterOrEqual(t, total, 19*period)
	assert.Less(t, total, 26*period)
}

var sinkFrameTime time.Duration

func BenchmarkPacer_Uncapped(b *testing.B) {
	p := NewPacer().SetPeriod(0)
	b.ReportAllocs()
	b.ResetTimer()

	var d time.Duration
	for i := 0; i < b.N; i++ {
		d = p.Frame()
		p.Log()
	}
	sinkFrameTime = d
}

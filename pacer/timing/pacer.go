package timing

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Pacer holds a loop to a target period. Waits are split between a thread
// suspend and a busy spin, and a late call is allowed to catch up with the
// original schedule as long as it lags less than the slack.
//
// A Pacer is owned by a single goroutine and is not safe for concurrent use.
type Pacer struct {
	clk clock

	// instant of the previous call to Frame
	previous time.Time
	// instant at which the next call to Frame unblocks
	target time.Time
	period time.Duration

	frameCount      uint64
	resyncCount     uint64
	maxDelayPeriods uint32
	highPrecision   bool

	previousLog     time.Time
	logTarget       time.Time
	logInterval     time.Duration
	prevFrameCount  uint64
	prevResyncCount uint64
}

// NewPacer returns a pacer configured with DefaultConfig.
func NewPacer() *Pacer {
	return newPacer(systemClock{}, DefaultConfig())
}

// New returns a pacer configured with cfg.
func New(cfg Config) (*Pacer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newPacer(systemClock{}, cfg), nil
}

func newPacer(c clock, cfg Config) *Pacer {
	now := c.Now()
	return &Pacer{
		clk:             c,
		previous:        now,
		target:          now.Add(cfg.Period),
		period:          cfg.Period,
		maxDelayPeriods: cfg.MaxDelayPeriods,
		highPrecision:   cfg.HighPrecision,
		previousLog:     now,
		logTarget:       now.Add(cfg.LogInterval),
		logInterval:     cfg.LogInterval,
	}
}

// SetLogInterval sets the minimum time between two snapshots and restarts
// the current logging window from the previous pacing call.
// It panics if d is negative.
func (p *Pacer) SetLogInterval(d time.Duration) *Pacer {
	if d < 0 {
		panic(ErrNegativeLogInterval)
	}
	p.logInterval = d
	p.logTarget = p.previous.Add(d)
	return p
}

// SetPeriod sets the target time between two pacing calls and schedules the
// next call one period after the previous one. A zero period disables
// waiting. It panics if d is negative.
func (p *Pacer) SetPeriod(d time.Duration) *Pacer {
	if d < 0 {
		panic(ErrNegativePeriod)
	}
	p.period = d
	p.target = p.previous.Add(d)
	return p
}

// SetRate sets the period to 1/rate seconds. A rate of 0 means uncapped.
// It panics if rate is negative, NaN, infinite or too small to represent.
func (p *Pacer) SetRate(rate float64) *Pacer {
	period, err := PeriodFromRate(rate)
	if err != nil {
		panic(fmt.Errorf("%w: %v", err, rate))
	}
	return p.SetPeriod(period)
}

// SetHighPrecision selects the high precision wait, trading CPU time spent
// spinning for accuracy. Enabled by default.
func (p *Pacer) SetHighPrecision(enabled bool) *Pacer {
	p.highPrecision = enabled
	return p
}

// SetMaxDelayPeriods sets how many periods a pacing call may lag behind
// before the schedule is reset to the current time.
func (p *Pacer) SetMaxDelayPeriods(n uint32) *Pacer {
	p.maxDelayPeriods = n
	return p
}

func (p *Pacer) Period() time.Duration      { return p.period }
func (p *Pacer) Rate() float64              { return RateFromPeriod(p.period) }
func (p *Pacer) LogInterval() time.Duration { return p.logInterval }
func (p *Pacer) MaxDelayPeriods() uint32    { return p.maxDelayPeriods }
func (p *Pacer) HighPrecision() bool        { return p.highPrecision }
func (p *Pacer) FrameCount() uint64         { return p.frameCount }
func (p *Pacer) Resyncs() uint64            { return p.resyncCount }

// Slack is the lag a pacing call may accumulate while still catching up
// with the original schedule. Saturates instead of overflowing.
func (p *Pacer) Slack() time.Duration {
	if p.period <= 0 {
		return 0
	}
	if int64(p.maxDelayPeriods) > math.MaxInt64/int64(p.period) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(p.maxDelayPeriods) * p.period
}

// Frame waits until the next scheduled instant and returns the time elapsed
// since the previous call to Frame.
func (p *Pacer) Frame() time.Duration {
	p.frameCount++
	current := p.clk.Now()

	if p.period > 0 {
		behind := max(current.Sub(p.target), 0)

		// Past the slack the backlog is dropped and the next call is
		// scheduled one period from now. Below it, the following calls
		// return early until the original cadence is restored.
		if behind > p.Slack() {
			p.target = current
			p.resyncCount++
			slog.Debug("Frame schedule reset",
				"behind_ms", float64(behind)/float64(time.Millisecond),
				"slack_ms", float64(p.Slack())/float64(time.Millisecond),
				"frame", p.frameCount)
		}

		if current.Before(p.target) {
			current = p.wait(p.target)
		}

		p.target = p.target.Add(p.period)
	}

	frameTime := current.Sub(p.previous)
	p.previous = current
	return frameTime
}

func (p *Pacer) wait(target time.Time) time.Time {
	if p.highPrecision {
		return sleepUntil(p.clk, target, highPrecisionSpinMargin)
	}
	return sleepUntil(p.clk, target, coarseSpinMargin)
}

// Log returns the statistics of the logging interval that just completed,
// or false while the interval is still running. It reads the timestamp of
// the last pacing call and does not sample the clock itself.
func (p *Pacer) Log() (Snapshot, bool) {
	current := p.previous
	if current.Before(p.logTarget) {
		return Snapshot{}, false
	}

	frames := p.frameCount - p.prevFrameCount
	if frames == 0 {
		// only reachable with a zero log interval and no Frame in between
		return Snapshot{}, false
	}

	s := Snapshot{
		deltaAvg: current.Sub(p.previousLog) / time.Duration(frames),
		frames:   frames,
		resyncs:  p.resyncCount - p.prevResyncCount,
	}

	p.logTarget = current.Add(p.logInterval)
	p.previousLog = current
	p.prevFrameCount = p.frameCount
	p.prevResyncCount = p.resyncCount

	return s, true
}

// Reset re-anchors both the schedule and the logging window to now. Frames
// counted before the reset are not included in the next snapshot.
func (p *Pacer) Reset() {
	now := p.clk.Now()
	p.previous = now
	p.target = now.Add(p.period)
	p.previousLog = now
	p.logTarget = now.Add(p.logInterval)
	p.prevFrameCount = p.frameCount
	p.prevResyncCount = p.resyncCount
}

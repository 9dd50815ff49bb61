package timing

import "time"

// TickerLimiter paces with a time.Ticker. It is simpler than Pacer but
// inherits the runtime timer's accuracy and silently drops ticks when the
// loop falls behind.
type TickerLimiter struct {
	ticker   *time.Ticker
	ch       <-chan time.Time
	period   time.Duration
	previous time.Time
}

// NewTickerLimiter panics if period is not positive, like time.NewTicker.
func NewTickerLimiter(period time.Duration) *TickerLimiter {
	ticker := time.NewTicker(period)
	return &TickerLimiter{
		ticker:   ticker,
		ch:       ticker.C,
		period:   period,
		previous: time.Now(),
	}
}

func (t *TickerLimiter) Frame() time.Duration {
	<-t.ch
	now := time.Now()
	frameTime := now.Sub(t.previous)
	t.previous = now
	return frameTime
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
	t.previous = time.Now()
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}

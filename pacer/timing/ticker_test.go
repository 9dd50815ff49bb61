package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickerLimiter(t *testing.T) {
	if testing.Short() {
		t.Skip("real clock test")
	}

	period := 10 * time.Millisecond
	l := NewTickerLimiter(period)
	defer l.Stop()

	var total time.Duration
	for i := 0; i < 5; i++ {
		total += l.Frame()
	}
	assert.GreaterOrEqual(t, total, 4*period)

	l.Reset()
	assert.Greater(t, l.Frame(), time.Duration(0))
}

func TestTickerLimiterImplementsLimiter(t *testing.T) {
	var _ Limiter = (*TickerLimiter)(nil)
	var _ Limiter = (*Pacer)(nil)
}

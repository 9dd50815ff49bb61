package timing

import (
	"errors"
	"time"
)

var (
	ErrNegativePeriod      = errors.New("timing: negative period")
	ErrNegativeLogInterval = errors.New("timing: negative log interval")
	ErrInvalidRate         = errors.New("timing: rate must be a finite, non-negative number")
)

// Defaults used by NewPacer and DefaultConfig.
const (
	DefaultPeriod          = time.Second / DefaultRate
	DefaultLogInterval     = 100 * time.Millisecond
	DefaultMaxDelayPeriods = 2
)

// Config holds the settings of a Pacer.
type Config struct {
	// Period between two pacing calls. Zero disables waiting.
	Period time.Duration
	// LogInterval is the minimum time between two snapshots returned by Log.
	LogInterval time.Duration
	// MaxDelayPeriods is how many periods a call may lag behind its
	// schedule before the schedule is reset to now.
	MaxDelayPeriods uint32
	// HighPrecision selects SleepUntilHighPrecision over SleepUntil.
	HighPrecision bool
}

// DefaultConfig returns 60 calls per second, a 100ms log interval,
// 2 periods of slack and high precision waits.
func DefaultConfig() Config {
	return Config{
		Period:          DefaultPeriod,
		LogInterval:     DefaultLogInterval,
		MaxDelayPeriods: DefaultMaxDelayPeriods,
		HighPrecision:   true,
	}
}

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	if c.Period < 0 {
		return ErrNegativePeriod
	}
	if c.LogInterval < 0 {
		return ErrNegativeLogInterval
	}
	return nil
}

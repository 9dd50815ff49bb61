//go:build unix && !linux

package timing

import "time"

const highPrecisionSpinMargin = 250 * time.Microsecond

func suspend(d time.Duration) { time.Sleep(d) }

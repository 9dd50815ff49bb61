//go:build !unix

package timing

import "time"

// Sleep granularity on these platforms is often a full scheduler tick.
const highPrecisionSpinMargin = time.Millisecond

func suspend(d time.Duration) { time.Sleep(d) }

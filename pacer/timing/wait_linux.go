//go:build linux

package timing

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

const highPrecisionSpinMargin = 250 * time.Microsecond

// suspend parks the OS thread in nanosleep(2) instead of going through the
// runtime timer heap, resuming with the remaining time when interrupted.
func suspend(d time.Duration) {
	ts := unix.NsecToTimespec(int64(d))
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&ts, &rem)
		if !errors.Is(err, unix.EINTR) {
			return
		}
		ts = rem
	}
}

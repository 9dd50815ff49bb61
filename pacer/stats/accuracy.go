package stats

import (
	"math"
	"time"
)

// Report describes how closely a series of frame times tracked a period.
type Report struct {
	Frames    int
	Period    time.Duration
	Total     time.Duration
	Mean      time.Duration
	StdDev    time.Duration
	MaxError  time.Duration
	WithinPct float64 // share of frames within Tolerance of the period
	Tolerance time.Duration
}

// Drift is how far the series ended up from Frames whole periods.
func (r Report) Drift() time.Duration {
	return r.Total - time.Duration(r.Frames)*r.Period
}

// Accuracy measures frameTimes against period. Frames within tolerance of
// the period count towards WithinPct.
func Accuracy(frameTimes []time.Duration, period, tolerance time.Duration) Report {
	r := Report{
		Frames:    len(frameTimes),
		Period:    period,
		Tolerance: tolerance,
	}
	if len(frameTimes) == 0 {
		return r
	}

	within := 0
	for _, ft := range frameTimes {
		r.Total += ft
		e := (ft - period).Abs()
		r.MaxError = max(r.MaxError, e)
		if e <= tolerance {
			within++
		}
	}
	r.Mean = r.Total / time.Duration(len(frameTimes))
	r.WithinPct = 100 * float64(within) / float64(len(frameTimes))

	var variance float64
	for _, ft := range frameTimes {
		d := float64(ft - r.Mean)
		variance += d * d
	}
	r.StdDev = time.Duration(math.Sqrt(variance / float64(len(frameTimes))))

	return r
}

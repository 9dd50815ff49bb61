// Package loop is a paced application loop: it calls a limiter once per
// iteration, runs a workload and hands the measurements to a backend.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-pacer/pacer/backend"
	"github.com/valerio/go-pacer/pacer/stats"
	"github.com/valerio/go-pacer/pacer/timing"
)

// StatsSource produces a snapshot at the end of every logging interval.
// *timing.Pacer implements it.
type StatsSource interface {
	Log() (timing.Snapshot, bool)
}

// Workload is the work done between two pacing calls.
type Workload interface {
	Step(frame uint64, frameTime time.Duration)
}

// WorkloadFunc adapts a function to Workload.
type WorkloadFunc func(frame uint64, frameTime time.Duration)

func (f WorkloadFunc) Step(frame uint64, frameTime time.Duration) { f(frame, frameTime) }

// Runner drives a limiter, a workload and a backend until asked to stop.
type Runner struct {
	limiter  timing.Limiter
	source   StatsSource
	workload Workload
	backend  backend.Backend
	history  *stats.History

	config    backend.Config
	frame     uint64
	maxFrames uint64
	quit      bool
}

// Options configures a Runner. Limiter and Backend are required.
type Options struct {
	Limiter timing.Limiter
	// Stats is optional; when nil and Limiter is a *timing.Pacer, the
	// pacer is used.
	Stats    StatsSource
	Workload Workload
	Backend  backend.Backend
	// HistorySize is the number of snapshots kept, defaults to 120.
	HistorySize int
	// MaxFrames stops the loop after that many iterations, 0 = no limit.
	MaxFrames uint64
	Title     string
}

func New(opts Options) (*Runner, error) {
	if opts.Limiter == nil {
		return nil, errors.New("loop: limiter is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("loop: backend is required")
	}

	r := &Runner{
		limiter:   opts.Limiter,
		source:    opts.Stats,
		workload:  opts.Workload,
		backend:   opts.Backend,
		maxFrames: opts.MaxFrames,
	}

	if r.source == nil {
		if p, ok := opts.Limiter.(*timing.Pacer); ok {
			r.source = p
		}
	}
	if r.workload == nil {
		r.workload = WorkloadFunc(func(uint64, time.Duration) {})
	}

	size := opts.HistorySize
	if size <= 0 {
		size = 120
	}
	r.history = stats.NewHistory(size)

	r.config = backend.Config{
		Title: opts.Title,
		Callbacks: backend.Callbacks{
			OnQuit:  func() { r.quit = true },
			OnReset: r.limiter.Reset,
		},
	}
	if p, ok := opts.Limiter.(*timing.Pacer); ok {
		r.config.Period = p.Period()
		r.config.Slack = p.Slack()
	}

	return r, nil
}

// History returns the snapshots collected so far.
func (r *Runner) History() *stats.History {
	return r.history
}

// Frames returns the number of completed iterations.
func (r *Runner) Frames() uint64 {
	return r.frame
}

// Run loops until ctx is cancelled, the backend requests a quit or the
// backend fails. Cancellation is only observed between iterations.
func (r *Runner) Run(ctx context.Context) (err error) {
	if err := r.backend.Init(r.config); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer func() {
		if cerr := r.backend.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("backend cleanup: %w", cerr)
		}
	}()

	r.limiter.Reset()

	for !r.quit {
		if ctx.Err() != nil {
			slog.Info("Loop cancelled", "frames", r.frame)
			return nil
		}

		frameTime := r.limiter.Frame()
		r.frame++
		r.workload.Step(r.frame, frameTime)

		info := backend.FrameInfo{
			Frame:     r.frame,
			FrameTime: frameTime,
			History:   r.history,
		}
		if r.source != nil {
			if s, ok := r.source.Log(); ok {
				r.history.Add(s)
				info.Snapshot = &s
			}
		}

		if err := r.backend.Update(info); err != nil {
			return fmt.Errorf("backend update at frame %d: %w", r.frame, err)
		}

		if r.maxFrames > 0 && r.frame >= r.maxFrames {
			break
		}
	}

	return nil
}

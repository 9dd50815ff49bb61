package backend

import (
	"time"

	"github.com/valerio/go-pacer/pacer/stats"
	"github.com/valerio/go-pacer/pacer/timing"
)

// Backend presents the state of a paced loop (terminal dashboard, log
// output, etc.). Backends are responsible for:
// - Rendering the frame information to their specific output
// - Translating platform events (keys, signals, frame budgets) into a quit
// request via Callbacks.OnQuit
type Backend interface {
	// Init configures the backend. Required before calling Update.
	Init(config Config) error

	// Update is called once per pacing call, right after it returns.
	Update(frame FrameInfo) error

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title     string
	Period    time.Duration // target period, 0 when uncapped
	Slack     time.Duration
	Callbacks Callbacks
}

// Callbacks allows backends to communicate with the loop
type Callbacks struct {
	// OnQuit requests shutdown (e.g. key press, frame budget reached)
	OnQuit func()

	// OnReset re-anchors the pacing schedule (optional)
	OnReset func()
}

// FrameInfo is what the loop knows after one pacing call.
type FrameInfo struct {
	Frame     uint64
	FrameTime time.Duration
	// Snapshot is set only on calls that completed a logging interval.
	Snapshot *timing.Snapshot
	History  *stats.History
}

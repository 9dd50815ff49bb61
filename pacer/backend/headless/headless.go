package headless

import (
	"log/slog"
	"os"

	"github.com/valerio/go-pacer/pacer/backend"
)

// Backend logs every snapshot and stops the loop after a fixed number of
// pacing calls. Used for batch runs and tests.
type Backend struct {
	config     backend.Config
	frameCount uint64
	maxFrames  uint64
	logger     *slog.Logger
}

// New returns a backend that quits after maxFrames calls. Zero runs until
// the loop is cancelled.
func New(maxFrames uint64) *Backend {
	return &Backend{maxFrames: maxFrames}
}

// WithLogger overrides the logger set up by Init.
func (h *Backend) WithLogger(logger *slog.Logger) *Backend {
	h.logger = logger
	return h
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config

	if h.logger == nil {
		// Set up debug logging for headless mode
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		h.logger = slog.New(handler)
		slog.SetDefault(h.logger)
	}

	h.logger.Info("Running headless mode",
		"title", config.Title,
		"frames", h.maxFrames,
		"period", config.Period,
		"slack", config.Slack)

	return nil
}

func (h *Backend) Update(frame backend.FrameInfo) error {
	h.frameCount++

	if s := frame.Snapshot; s != nil {
		h.logger.Info("Frame stats",
			"frame", frame.Frame,
			"frames", s.Frames(),
			"frame_time_ms", s.DeltaTimeAvgMs(),
			"fps", s.FPSAverage(),
			"resyncs", s.Resyncs())
	}

	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		attrs := []any{"frames", h.frameCount}
		if frame.History != nil && frame.History.Len() > 0 {
			sum := frame.History.Summary()
			attrs = append(attrs,
				"mean_fps", sum.MeanFPS,
				"min_fps", sum.MinFPS,
				"max_fps", sum.MaxFPS,
				"resyncs", sum.Resyncs)
		}
		h.logger.Info("Headless execution completed", attrs...)

		if h.config.Callbacks.OnQuit != nil {
			h.config.Callbacks.OnQuit()
		}
	}

	return nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// FrameCount is the number of updates received so far.
func (h *Backend) FrameCount() uint64 {
	return h.frameCount
}

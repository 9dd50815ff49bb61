package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/valerio/go-pacer/pacer/backend"
	"github.com/valerio/go-pacer/pacer/backend/headless"
	"github.com/valerio/go-pacer/pacer/backend/terminal"
	"github.com/valerio/go-pacer/pacer/loop"
	"github.com/valerio/go-pacer/pacer/timing"
)

var pacingFlags = []cli.Flag{
	cli.Float64Flag{
		Name:  "fps",
		Usage: "Target rate in frames per second (0 = uncapped)",
		Value: timing.DefaultRate,
	},
	cli.DurationFlag{
		Name:  "period",
		Usage: "Target period between frames, overrides --fps",
	},
	cli.DurationFlag{
		Name:  "log-interval",
		Usage: "Minimum time between two statistics snapshots",
		Value: timing.DefaultLogInterval,
	},
	cli.UintFlag{
		Name:  "max-lag",
		Usage: "Periods a frame may lag behind before the schedule is reset",
		Value: timing.DefaultMaxDelayPeriods,
	},
	cli.BoolFlag{
		Name:  "coarse",
		Usage: "Use the coarse wait (less spinning, less accurate)",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "pacer"
	app.Description = "A frame pacing timer with a live dashboard"
	app.Usage = "pacer <command> [options]"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "Run a paced loop with a simulated workload",
			Flags: append([]cli.Flag{
				cli.BoolFlag{
					Name:  "headless",
					Usage: "Log statistics instead of drawing the terminal dashboard",
				},
				cli.Uint64Flag{
					Name:  "frames",
					Usage: "Number of frames to run, 0 runs until quit (required for headless)",
				},
				cli.DurationFlag{
					Name:  "work",
					Usage: "CPU time burned per frame",
				},
				cli.Uint64Flag{
					Name:  "stall-every",
					Usage: "Stall the loop every N frames (0 = never)",
				},
				cli.DurationFlag{
					Name:  "stall",
					Usage: "Duration of each stall",
					Value: 25 * time.Millisecond,
				},
				cli.IntFlag{
					Name:  "history",
					Usage: "Number of snapshots kept for the dashboard",
					Value: 120,
				},
			}, pacingFlags...),
			Action: runLoop,
		},
		{
			Name:  "bench",
			Usage: "Compare the accuracy of the available limiters",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames",
					Usage: "Frames measured per limiter",
					Value: 300,
				},
				cli.DurationFlag{
					Name:  "tolerance",
					Usage: "Frame time error counted as on target",
					Value: 250 * time.Microsecond,
				},
			}, pacingFlags...),
			Action: runBench,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running pacer", "error", err)
		os.Exit(1)
	}
}

// configFromFlags maps the pacing flags onto a validated timing.Config.
func configFromFlags(c *cli.Context) (timing.Config, error) {
	cfg := timing.DefaultConfig()

	if c.IsSet("period") {
		cfg.Period = c.Duration("period")
	} else {
		period, err := timing.PeriodFromRate(c.Float64("fps"))
		if err != nil {
			return cfg, fmt.Errorf("invalid --fps: %w", err)
		}
		cfg.Period = period
	}

	cfg.LogInterval = c.Duration("log-interval")
	cfg.HighPrecision = !c.Bool("coarse")

	maxLag := c.Uint("max-lag")
	if uint64(maxLag) > math.MaxUint32 {
		return cfg, fmt.Errorf("invalid --max-lag: %d exceeds %d", maxLag, uint32(math.MaxUint32))
	}
	cfg.MaxDelayPeriods = uint32(maxLag)

	return cfg, cfg.Validate()
}

func runLoop(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}

	p, err := timing.New(cfg)
	if err != nil {
		return err
	}

	var be backend.Backend
	if c.Bool("headless") {
		frames := c.Uint64("frames")
		if frames == 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}
		be = headless.New(frames)
	} else {
		be = terminal.New()
	}

	title := fmt.Sprintf("pacer %.2f fps", p.Rate())
	if cfg.Period == 0 {
		title = "pacer uncapped"
	}

	runner, err := loop.New(loop.Options{
		Limiter: p,
		Backend: be,
		Workload: loop.SimulatedWorkload{
			Work:       c.Duration("work"),
			StallEvery: c.Uint64("stall-every"),
			Stall:      c.Duration("stall"),
		},
		HistorySize: c.Int("history"),
		MaxFrames:   c.Uint64("frames"),
		Title:       title,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx)
}

func runBench(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	if cfg.Period == 0 {
		return errors.New("bench requires a positive --fps or --period")
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("bench requires a positive --frames")
	}

	var results []benchResult
	for _, strategy := range benchStrategies(cfg) {
		slog.Info("Benchmarking limiter", "limiter", strategy.name, "frames", frames, "period", cfg.Period)
		lim := strategy.limiter()

		frameTimes := make([]time.Duration, 0, frames)
		lim.Reset()
		for i := 0; i < frames; i++ {
			frameTimes = append(frameTimes, lim.Frame())
		}
		if s, ok := lim.(interface{ Stop() }); ok {
			s.Stop()
		}

		results = append(results, newBenchResult(strategy.name, frameTimes, cfg.Period, c.Duration("tolerance")))
	}

	printBenchReport(os.Stdout, cfg, results)
	return nil
}

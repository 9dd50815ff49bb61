package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/valerio/go-pacer/pacer/stats"
	"github.com/valerio/go-pacer/pacer/timing"
)

type benchStrategy struct {
	name    string
	limiter func() timing.Limiter
}

func benchStrategies(cfg timing.Config) []benchStrategy {
	pacer := func(highPrecision bool) func() timing.Limiter {
		return func() timing.Limiter {
			c := cfg
			c.HighPrecision = highPrecision
			p, _ := timing.New(c) // cfg is validated by configFromFlags
			return p
		}
	}

	return []benchStrategy{
		{name: "high-precision", limiter: pacer(true)},
		{name: "coarse", limiter: pacer(false)},
		{name: "ticker", limiter: func() timing.Limiter { return timing.NewTickerLimiter(cfg.Period) }},
	}
}

type benchResult struct {
	name   string
	report stats.Report
}

func newBenchResult(name string, frameTimes []time.Duration, period, tolerance time.Duration) benchResult {
	return benchResult{name: name, report: stats.Accuracy(frameTimes, period, tolerance)}
}

func printBenchReport(w io.Writer, cfg timing.Config, results []benchResult) {
	headerColor := color.New(color.FgHiCyan, color.Bold).SprintfFunc()
	sectionColor := color.New(color.FgHiYellow).SprintFunc()
	labelColor := color.New(color.FgWhite).SprintfFunc()
	goodColor := color.New(color.FgGreen, color.Bold).SprintfFunc()
	badColor := color.New(color.FgRed, color.Bold).SprintfFunc()

	fmt.Fprintln(w, headerColor("[Pacer Accuracy Report]"))
	fmt.Fprintf(w, "%s : %.3f ms (%.2f fps)\n", labelColor("Target period"), ms(cfg.Period), timing.RateFromPeriod(cfg.Period))
	fmt.Fprintf(w, "%s : %d periods\n", labelColor("Max lag      "), cfg.MaxDelayPeriods)
	fmt.Fprintln(w, sectionColor("--------------------------------------------------------------------------"))
	fmt.Fprintln(w, sectionColor(fmt.Sprintf("%-16s %10s %10s %10s %10s %10s",
		"limiter", "mean ms", "stddev ms", "max err ms", "drift ms", "on target")))

	for _, r := range results {
		rep := r.report
		onTarget := fmt.Sprintf("%9.1f%%", rep.WithinPct)
		if rep.WithinPct >= 90 {
			onTarget = goodColor("%s", onTarget)
		} else {
			onTarget = badColor("%s", onTarget)
		}
		fmt.Fprintf(w, "%-16s %10.3f %10.3f %10.3f %10.3f %s\n",
			r.name, ms(rep.Mean), ms(rep.StdDev), ms(rep.MaxError), ms(rep.Drift()), onTarget)
	}
	fmt.Fprintln(w, sectionColor("--------------------------------------------------------------------------"))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package terminal

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-pacer/pacer/backend"
	"github.com/valerio/go-pacer/pacer/timing"
)

const (
	minTermWidth  = 60
	minTermHeight = 16

	statsHeight = 6
	chartHeight = 6
)

var sparkBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Backend renders a live dashboard of the paced loop using tcell
type Backend struct {
	screen    tcell.Screen
	logBuffer *LogBuffer
	logLevel  *slog.LevelVar
	config    backend.Config

	lastFrame backend.FrameInfo
	latest    *timing.Snapshot
}

// New creates a terminal backend on the default tcell screen
func New() *Backend {
	return &Backend{}
}

// NewWithScreen creates a terminal backend drawing on screen, which must not
// be initialized yet.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (t *Backend) Init(config backend.Config) error {
	t.config = config

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// capture logs on screen, stderr would corrupt the display
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	t.logBuffer = NewLogBuffer(200)
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	slog.Info("Terminal backend initialized", "period", config.Period, "slack", config.Slack)
	return nil
}

func (t *Backend) Update(frame backend.FrameInfo) error {
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	t.lastFrame = frame
	if frame.Snapshot != nil {
		s := *frame.Snapshot
		t.latest = &s
		if s.Resyncs() > 0 {
			slog.Warn("Schedule reset", "resyncs", s.Resyncs(), "frame", frame.Frame)
		}
	}

	t.render()
	t.screen.Show()
	return nil
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// Logs exposes the captured log lines.
func (t *Backend) Logs() *LogBuffer {
	return t.logBuffer
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit()
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		t.quit()
	case 'r', 'R':
		if t.config.Callbacks.OnReset != nil {
			t.config.Callbacks.OnReset()
			slog.Info("Schedule re-anchored")
		}
	case '+', '=':
		t.changeLogLevel(-1)
	case '-', '_':
		t.changeLogLevel(1)
	}
}

func (t *Backend) quit() {
	if t.config.Callbacks.OnQuit != nil {
		t.config.Callbacks.OnQuit()
	}
}

// changeLogLevel moves the on-screen filter; -1 shows more, +1 shows less.
func (t *Backend) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	current := t.logLevel.Level()
	for i, l := range levels {
		if l != current {
			continue
		}
		next := i + direction
		if next < 0 || next >= len(levels) {
			return
		}
		t.logLevel.Set(levels[next])
		slog.Info("Log filter changed", "from", current, "to", levels[next])
		return
	}
}

func (t *Backend) render() {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	title := " go-pacer "
	if t.config.Title != "" {
		title = fmt.Sprintf(" %s ", t.config.Title)
	}
	t.drawRule(0, termWidth, borderStyle)
	t.drawText(1, 0, termWidth, title, titleStyle)

	t.drawStats(1, 1, termWidth-2)

	chartY := 1 + statsHeight
	t.drawRule(chartY, termWidth, borderStyle)
	t.drawText(1, chartY, termWidth, " FPS history ", titleStyle)
	t.drawChart(1, chartY+1, termWidth-2, chartHeight)

	logsY := chartY + chartHeight + 1
	t.drawRule(logsY, termWidth, borderStyle)
	t.drawText(1, logsY, termWidth, fmt.Sprintf(" Logs [%s] (+/- filter) ", t.logLevel.Level()), titleStyle)
	t.drawLogs(1, logsY+1, termWidth-2, termHeight-1-(logsY+1))

	t.drawText(0, termHeight-1, termWidth, " q/Esc quit | r re-anchor schedule | +/- log filter ", borderStyle)
}

func (t *Backend) drawStats(x, y, w int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	good := tcell.StyleDefault.Foreground(tcell.ColorGreen)

	target := "uncapped"
	if t.config.Period > 0 {
		target = fmt.Sprintf("%.3f ms (%.2f fps)  slack %.3f ms",
			durationMs(t.config.Period), timing.RateFromPeriod(t.config.Period), durationMs(t.config.Slack))
	}
	t.drawText(x, y, w, "Target:  "+target, style)
	t.drawText(x, y+1, w, fmt.Sprintf("Frame:   #%d  last %.3f ms", t.lastFrame.Frame, durationMs(t.lastFrame.FrameTime)), style)

	if t.latest != nil {
		s := t.latest
		t.drawText(x, y+2, w, fmt.Sprintf("Window:  %.3f ms avg  %s fps  (%d frames, %d resyncs)",
			s.DeltaTimeAvgMs(), formatFPS(s.FPSAverage()), s.Frames(), s.Resyncs()), good)
	} else {
		t.drawText(x, y+2, w, "Window:  waiting for first interval", style)
	}

	if h := t.lastFrame.History; h != nil && h.Len() > 0 {
		sum := h.Summary()
		t.drawText(x, y+3, w, fmt.Sprintf("History: %d windows  mean %s fps  min %s  max %s",
			sum.Count, formatFPS(sum.MeanFPS), formatFPS(sum.MinFPS), formatFPS(sum.MaxFPS)), style)
		t.drawText(x, y+4, w, fmt.Sprintf("         jitter %.3f ms  resyncs %d",
			durationMs(sum.StdDevFrameTime), sum.Resyncs), style)
	}
}

func (t *Backend) drawChart(x, y, w, h int) {
	history := t.lastFrame.History
	if history == nil || w <= 0 {
		return
	}
	recent := history.Recent(w)
	if len(recent) == 0 {
		return
	}

	// scale against the target rate, or the best observed when uncapped
	top := timing.RateFromPeriod(t.config.Period)
	if top == 0 {
		top = maxFinite(recent)
	}
	if top <= 0 {
		return
	}
	top *= 1.1

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	steps := h * (len(sparkBlocks) - 1)
	for col, s := range recent {
		fps := s.FPSAverage()
		level := steps
		if !math.IsInf(fps, 1) {
			level = int(math.Round(fps / top * float64(steps)))
		}
		level = min(max(level, 0), steps)

		for row := 0; row < h; row++ {
			fill := level - row*(len(sparkBlocks)-1)
			fill = min(max(fill, 0), len(sparkBlocks)-1)
			t.screen.SetContent(x+col, y+h-1-row, sparkBlocks[fill], nil, style)
		}
	}
}

func (t *Backend) drawLogs(x, y, w, h int) {
	if h <= 0 {
		return
	}
	for i, entry := range t.logBuffer.Recent(h, t.logLevel.Level()) {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case entry.Level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case entry.Level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case entry.Level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		t.drawText(x, y+i, w, FormatLogEntry(entry), style)
	}
}

func (t *Backend) drawRule(y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, y, '─', nil, style)
	}
}

func (t *Backend) drawText(x, y, w int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= w {
			return
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func formatFPS(fps float64) string {
	if math.IsInf(fps, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", fps)
}

func maxFinite(snapshots []timing.Snapshot) float64 {
	top := 0.0
	for _, s := range snapshots {
		if fps := s.FPSAverage(); !math.IsInf(fps, 1) {
			top = math.Max(top, fps)
		}
	}
	return top
}

var _ backend.Backend = (*Backend)(nil)

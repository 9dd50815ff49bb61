package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_KeepsNewest(t *testing.T) {
	lb := NewLogBuffer(3)
	for i, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Time: time.Unix(int64(i), 0), Level: slog.LevelInfo, Message: msg})
	}

	assert.Equal(t, 3, lb.Len())
	recent := lb.Recent(0, slog.LevelDebug)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message, "newest first")
	assert.Equal(t, "b", recent[2].Message)
}

func TestLogBuffer_RecentFiltersByLevel(t *testing.T) {
	lb := NewLogBuffer(10)
	lb.Add(LogEntry{Level: slog.LevelDebug, Message: "debug"})
	lb.Add(LogEntry{Level: slog.LevelWarn, Message: "warn"})
	lb.Add(LogEntry{Level: slog.LevelInfo, Message: "info"})
	lb.Add(LogEntry{Level: slog.LevelError, Message: "error"})

	tests := []struct {
		name     string
		max      int
		minLevel slog.Level
		want     []string
	}{
		{"all", 0, slog.LevelDebug, []string{"error", "info", "warn", "debug"}},
		{"warn and up", 0, slog.LevelWarn, []string{"error", "warn"}},
		{"capped", 2, slog.LevelDebug, []string{"error", "info"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range lb.Recent(tt.max, tt.minLevel) {
				got = append(got, e.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo))

	logger.Debug("hidden")
	logger.With("component", "pacer").WithGroup("window").Info("Frame stats", "fps", 60)

	require.Equal(t, 1, lb.Len())
	entry := lb.Recent(1, slog.LevelDebug)[0]
	assert.Equal(t, slog.LevelInfo, entry.Level)
	assert.Equal(t, "Frame stats component=pacer window.fps=60", entry.Message)
}

func TestFormatLogEntry(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 4, 5, 6_000_000, time.UTC)
	got := FormatLogEntry(LogEntry{Time: ts, Level: slog.LevelWarn, Message: "late"})
	assert.Equal(t, "13:04:05.006 [WRN] late", got)
}

package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, err := New(Config{
		Level:    level,
		FilePath: logPath,
	})
	require.NoError(t, err)

	SetDefaultLogger(logger)
	t.Cleanup(func() { SetDefaultLogger(nil) })
	return logger, logPath
}

func readLog(t *testing.T, logger *Logger, path string) string {
	t.Helper()
	logger.Close()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestLogging(t *testing.T) {
	logger, logPath := newFileLogger(t, "debug")

	Debug("Debug message", "test", true)
	Info("Info message", "test", true)
	Warn("Warning message", "test", true)
	Error("Error message", "error", fmt.Errorf("test error"))
	Trace("Trace message")
	logger.With("generation", 3).Info("Child message")

	content := readLog(t, logger, logPath)
	assert.Contains(t, content, "Debug message")
	assert.Contains(t, content, "Info message")
	assert.Contains(t, content, "Warning message")
	assert.Contains(t, content, "Error message")
	assert.Contains(t, content, "test error")
	assert.Contains(t, content, `"generation":3`)
	assert.NotContains(t, content, "Trace message", "trace output needs the trace level")
}

func TestTraceLevel(t *testing.T) {
	logger, logPath := newFileLogger(t, "TRACE")

	Trace("Raw IPC line", "data", "{}")

	content := readLog(t, logger, logPath)
	assert.Contains(t, content, "TRACE: Raw IPC line")
}

func TestLevelFiltering(t *testing.T) {
	logger, logPath := newFileLogger(t, "warn")

	Info("quiet")
	Warn("loud")

	content := readLog(t, logger, logPath)
	assert.NotContains(t, content, "quiet")
	assert.Contains(t, content, "loud")
}

func TestNoDefaultLogger(t *testing.T) {
	SetDefaultLogger(nil)
	assert.NotPanics(t, func() {
		Info("dropped")
		Trace("dropped")
		Slog().Info("dropped")
	})
}

func TestDiscardWithoutFile(t *testing.T) {
	logger, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		logger.Info("nowhere")
		logger.Close()
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ReturnsUsableLogger(t *testing.T) {
	logger := New(slog.LevelInfo)
	require.NotNil(t, logger)
	logger.Info("test message", "key", "value")
}

func TestLevelFromString(t *testing.T) {
	require.Equal(t, slog.LevelDebug, LevelFromString("debug"))
	require.Equal(t, slog.LevelWarn, LevelFromString("warn"))
	require.Equal(t, slog.LevelError, LevelFromString("error"))
	require.Equal(t, slog.LevelInfo, LevelFromString("info"))
	require.Equal(t, slog.LevelInfo, LevelFromString("garbage"))
}

package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConsoleLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		expected  zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ConsoleLevel(tt.verbosity))
	}
}

func TestNew_WritesDebugFile(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 1, 4, 9, 35, 0, 0, time.UTC)
	logger, closeFn, err := New(Options{Verbosity: 0, Dir: dir, Now: func() time.Time { return fixed }})
	require.NoError(t, err)

	logger.Debug("debug goes to file only")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, "gapscout_20240104_093500.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug goes to file only")
	assert.Contains(t, string(data), "run_id")
}

func TestNew_NoDir(t *testing.T) {
	logger, closeFn, err := New(Options{Verbosity: 2})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closeFn())
}

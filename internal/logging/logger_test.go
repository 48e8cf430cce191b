package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap/zapcore"
)

func TestInitializeWritesToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize("debug", dir))

	Get(CategoryAPI).Infow("request", "method", "GET", "path", "/writers")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, "wrw.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "api")
	assert.Contains(t, string(data), "request")
}

func TestGetBeforeInitializeIsSafe(t *testing.T) {
	// The nop default must absorb log calls without panicking.
	Get(CategoryUI).Debug("no-op")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("anything-else"))
}

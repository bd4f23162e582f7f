package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfig(t *testing.T) {
	debug := buildConfig("debug")
	assert.Equal(t, "console", debug.Encoding)
	assert.True(t, debug.Development)

	warn := buildConfig("warn")
	assert.Equal(t, "json", warn.Encoding)
	assert.Equal(t, zapcore.WarnLevel, warn.Level.Level())
	assert.Nil(t, warn.Sampling)

	unknown := buildConfig("verbose")
	assert.Equal(t, zapcore.InfoLevel, unknown.Level.Level())
}

func TestNew(t *testing.T) {
	log, err := New("info", "test")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLevels(t *testing.T) {
	l, err := New("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud")
	assert.Error(t, err)
}

func TestPrintfHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	old := SetServiceName("signal_bot")
	defer SetServiceName(old)
	l := Init(zap.New(core))
	defer Init(nil)

	Info("sweep %d done", 3)
	Error("boom: %s", "x")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "sweep 3 done", entries[0].Message)
	assert.Equal(t, "signal_bot", entries[0].ContextMap()["service"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	l.Info("component line")
	require.Len(t, logs.All(), 3)
	assert.Equal(t, "signal_bot", logs.All()[2].ContextMap()["service"])
}

func TestPanicsWithoutInit(t *testing.T) {
	Init(nil)
	assert.Panics(t, func() { Info("x") })
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func swapRoot(t *testing.T, l *zap.Logger) {
	t.Helper()
	mu.Lock()
	prev := root
	root = l
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		root = prev
		mu.Unlock()
	})
}

func TestInitAppliesLevel(t *testing.T) {
	swapRoot(t, zap.NewNop())

	require.NoError(t, Init("debug"))
	require.True(t, Logger().Core().Enabled(zap.DebugLevel))

	SetLevel("warn")
	require.False(t, Logger().Core().Enabled(zap.InfoLevel))
	require.True(t, Logger().Core().Enabled(zap.WarnLevel))

	SetLevel("info")
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	swapRoot(t, zap.NewNop())

	require.NoError(t, Init("shouting"))
	require.True(t, Logger().Core().Enabled(zap.InfoLevel))
	require.False(t, Logger().Core().Enabled(zap.DebugLevel))
}

func TestWithModuleTagsEntries(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	swapRoot(t, zap.New(core))

	WithModule("fieldstore").Info("tier degraded")

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "tier degraded", entries[0].Message)
	require.Equal(t, "fieldstore", entries[0].ContextMap()["module"])
}

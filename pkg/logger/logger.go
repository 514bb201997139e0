package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The process-wide logger. Storage tiers receive child loggers through
// configuration, so everything funnels through one sink with one level.
var (
	mu        sync.RWMutex
	root      *zap.Logger
	rootLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	// Usable before Init so early construction paths can log safely.
	root = zap.NewNop()
}

// Init builds the process logger at the given level. Unknown level strings
// fall back to info rather than failing startup.
func Init(level string) error {
	rootLevel.SetLevel(parseLevel(level))

	cfg := zap.NewProductionConfig()
	cfg.Level = rootLevel
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	root = built
	mu.Unlock()
	return nil
}

// SetLevel adjusts the logging threshold at runtime without rebuilding the
// logger.
func SetLevel(level string) {
	rootLevel.SetLevel(parseLevel(level))
}

// Logger returns the process logger.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// WithModule returns a child logger tagged with the owning module name.
func WithModule(module string) *zap.Logger {
	return Logger().With(zap.String("module", module))
}

// Sync flushes buffered entries; called on shutdown.
func Sync() error {
	return Logger().Sync()
}

func parseLevel(level string) zapcore.Level {
	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

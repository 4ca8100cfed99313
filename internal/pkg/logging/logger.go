package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON logger every binary uses. Entries carry the
// service name and env. dev logs at debug, LOG_LEVEL overrides the level
// and LOG_FILE tees output into a file.
func NewLogger(service, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil

	level := zapcore.InfoLevel
	if env == "dev" {
		level = zapcore.DebugLevel
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.Set(raw); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL %q: %w", raw, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	if path := os.Getenv("LOG_FILE"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, path)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder

	cfg.InitialFields = map[string]any{
		"service": service,
		"env":     env,
	}
	return cfg.Build(zap.AddCaller())
}

// MustNewLogger panics when NewLogger fails.
func MustNewLogger(service, env string) *zap.Logger {
	logger, err := NewLogger(service, env)
	if err != nil {
		panic(err)
	}
	return logger
}

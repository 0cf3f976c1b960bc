package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options describes how the process logger is built.
type Options struct {
	Level       string
	Format      string
	ServiceName string
	Environment string
	Version     string
}

// New builds a structured zap.Logger using the provided level (info, warn, debug, error).
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	if strings.EqualFold(strings.TrimSpace(opts.Format), "console") {
		cfg.Encoding = "console"
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	level := strings.TrimSpace(opts.Level)
	if level == "" {
		level = "info"
	}

	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := cfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, err
	}

	service := strings.TrimSpace(opts.ServiceName)
	if service == "" {
		service = "bookingcore"
	}
	logger = logger.With(
		zap.String("service", service),
		zap.String("env", strings.TrimSpace(opts.Environment)),
		zap.String("version", strings.TrimSpace(opts.Version)),
	)

	zap.ReplaceGlobals(logger)
	return logger, nil
}

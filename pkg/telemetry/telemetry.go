// Package telemetry provides a zap-backed sink for layout engine events.
package telemetry

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls sink construction.
type Options struct {
	// File enables rotated file output when set.
	File string
	// MaxSizeMB caps each log file before rotation. Defaults to 10.
	MaxSizeMB int
	// MaxBackups bounds retained rotated files. Defaults to 3.
	MaxBackups int
	// Development switches to the console encoder.
	Development bool
}

// Sink records layout events as structured zap entries.
type Sink struct {
	logger *zap.Logger
}

// New builds a sink writing to stderr and, if configured, a rotated file.
func New(opts Options) *Sink {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if opts.Development {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zapcore.InfoLevel),
	}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		rotated := zapcore.AddSync(&lj.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), rotated, zapcore.InfoLevel))
	}

	return &Sink{logger: zap.New(zapcore.NewTee(cores...))}
}

// NewWithLogger wraps an existing zap logger, e.g. a test observer.
func NewWithLogger(logger *zap.Logger) *Sink {
	return &Sink{logger: logger}
}

// Record emits one event with its payload as structured fields.
func (s *Sink) Record(ctx context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	s.logger.Info(event, fields...)
}

// Sync flushes buffered entries.
func (s *Sink) Sync() error {
	return s.logger.Sync()
}

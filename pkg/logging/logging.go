// Package logging builds the zap logger and bridges it to dictionary telemetry.
package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavor.
type Config struct {
	Level       string
	Development bool
}

// New builds a zap logger. Development mode uses the console encoder.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logging: invalid level %q: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// Telemetry writes recorded events to a zap logger.
type Telemetry struct {
	logger *zap.Logger
}

// NewTelemetry wraps logger; a nil logger discards events.
func NewTelemetry(logger *zap.Logger) *Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telemetry{logger: logger.Named("telemetry")}
}

// Record logs failures at warn and everything else at debug.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload)+1)
	fields = append(fields, zap.String("event", event))
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fields = append(fields, zap.Any(key, payload[key]))
	}
	if isFailure(event) {
		t.logger.Warn(event, fields...)
		return
	}
	t.logger.Debug(event, fields...)
}

func isFailure(event string) bool {
	return strings.HasSuffix(event, "_error") ||
		strings.HasSuffix(event, "_failed") ||
		strings.HasSuffix(event, ".error")
}

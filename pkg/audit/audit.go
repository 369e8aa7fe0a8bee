// Package audit provides the security audit log for CodeShift.
//
// Audit events are structured JSON lines written via zap to a file
// under the config directory, separate from user-facing CLI output.
// The log is append-only documentation of what the tool did and what it
// refused to do; it is not a transactional record.
package audit

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger writes structured audit events.
type Logger struct {
	z *zap.Logger
}

// New creates an audit logger writing JSON lines to dir/audit.log,
// creating dir if absent.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "json",
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{filepath.Join(dir, "audit.log")},
		ErrorOutputPaths: []string{"stderr"},
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit logger: %w", err)
	}
	return &Logger{z: z}, nil
}

// NewNop returns a logger that discards everything. Useful in tests and
// for callers that have not configured auditing.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// MigrationEvent records a lifecycle event of a migration run.
func (l *Logger) MigrationEvent(migrationType, root, action, result string, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("event", "migration"),
		zap.String("migration_type", migrationType),
		zap.String("root", root),
		zap.String("action", action),
		zap.String("result", result),
	}
	l.z.Info("migration event", append(base, fields...)...)
}

// SecurityViolation records a rejected input. The error detail already
// names the violated rule and carries only sanitized input.
func (l *Logger) SecurityViolation(operation string, err error) {
	l.z.Warn("security violation",
		zap.String("event", "security_violation"),
		zap.String("operation", operation),
		zap.Error(err))
}

// FileWrite records a completed safe write.
func (l *Logger) FileWrite(path string, bytes int) {
	l.z.Info("file written",
		zap.String("event", "file_write"),
		zap.String("path", path),
		zap.Int("bytes", bytes))
}

// Close flushes buffered events.
func (l *Logger) Close() error {
	// Sync on a file sink can return EINVAL on some platforms; the
	// events are already written at that point.
	_ = l.z.Sync()
	return nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

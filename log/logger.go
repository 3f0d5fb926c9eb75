// Package log provides structured logging for the decode pipeline.
//
// Library code takes a *Logger and defaults to Nop, so embedding the decoder
// never produces output the caller didn't ask for. The CLI wires a real
// logger writing JSON to stderr; debug verbosity is controlled by the
// REPLAY_META_DEBUG environment variable.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv is the environment variable that enables debug diagnostics.
const DebugEnv = "REPLAY_META_DEBUG"

// Logger wraps zap with the decode pipeline's context fields.
type Logger struct {
	zap *zap.Logger
}

// New creates a logger writing JSON to stderr. Debug-level entries are
// emitted only when DebugEnabled reports true.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a logger writing to w. Used by tests.
func NewWithWriter(w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	level := zapcore.InfoLevel
	if DebugEnabled() {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{zap: zap.New(core)}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// DebugEnabled reports whether the debug environment flag is set.
func DebugEnabled() bool {
	switch os.Getenv(DebugEnv) {
	case "", "0", "false":
		return false
	}
	return true
}

// With returns a logger with additional context fields.
func (l *Logger) With(fields map[string]any) *Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return &Logger{zap: l.zap.With(zapFields...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

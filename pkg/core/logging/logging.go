// ============================================================================
// hermes - AI Command Gateway
// ============================================================================
//
// Package:     logging
// Description: Factory functions and key-value convenience layer on top of
//              the core structured logger
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	corelog "github.com/msto63/hermes/pkg/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format ("json" or "text", default: json)
	Format string

	// Output destination (default: stdout)
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a new core logger from the given configuration
func NewLogger(cfg LoggerConfig) *corelog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	return corelog.NewWithConfig(corelog.Config{
		Level:  corelog.ParseLevel(cfg.Level),
		Format: corelog.ParseFormat(cfg.Format),
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// Logger wraps the core logger with a key-value pair interface
type Logger struct {
	*corelog.Logger
	name string
}

// New creates a new logger for the named component
func New(name string) *Logger {
	return &Logger{
		Logger: NewLogger(DefaultLoggerConfig(name)),
		name:   name,
	}
}

// NewWithConfig creates a new logger with the given configuration
func NewWithConfig(cfg LoggerConfig) *Logger {
	return &Logger{
		Logger: NewLogger(cfg),
		name:   cfg.ServiceName,
	}
}

// WithRequestID returns a logger with the request ID context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.WithRequestID(requestID),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// ErrorWithErr logs an error message with an error value and key-value pairs
func (l *Logger) ErrorWithErr(msg string, err error, keysAndValues ...interface{}) {
	l.Logger.ErrorWithErr(msg, err, toFields(keysAndValues...))
}

// WarnWithErr logs a warning message with an error value and key-value pairs
func (l *Logger) WarnWithErr(msg string, err error, keysAndValues ...interface{}) {
	l.Logger.WarnWithErr(msg, err, toFields(keysAndValues...))
}

// toFields converts key-value pairs to corelog.Fields
func toFields(keysAndValues ...interface{}) corelog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(corelog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

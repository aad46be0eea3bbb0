// Package logger is the process-wide structured logger. Every status line
// carries one of four categories: info, success, warn or error. Success and
// notice records are shown whatever the configured level.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	// testOutput is used to capture log output during tests
	testOutput   io.Writer
	testOutputMu sync.Mutex
)

// Fields is a type alias for log fields to make the API cleaner
type Fields map[string]interface{}

var (
	logger   *slog.Logger
	loggerMu sync.Mutex
)

// SetTestOutput sets the output writer for testing purposes and resets the logger
// so the next call picks it up.
func SetTestOutput(w io.Writer) {
	testOutputMu.Lock()
	testOutput = w
	testOutputMu.Unlock()
	InitLogger("debug", nil)
}

// UnsetTestOutput resets the test output to nil
func UnsetTestOutput() {
	testOutputMu.Lock()
	testOutput = nil
	testOutputMu.Unlock()
	InitLogger("info", nil)
}

func getOutput() io.Writer {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	if testOutput != nil {
		return testOutput
	}
	return os.Stderr
}

// ParseLevel maps a level name onto slog. Unknown names fall back to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity converts a repeated -v count into a level name.
// Without -v only warnings and errors are shown.
func LevelFromVerbosity(count int, fallback string) string {
	switch {
	case count <= 0:
		if fallback != "" {
			return fallback
		}
		return "warn"
	case count == 1:
		return "info"
	default:
		return "debug"
	}
}

// InitLogger initializes the global logger. When extra is non-nil every
// record is also written to it, which is how --log-file is implemented.
func InitLogger(logLevel string, extra io.Writer) {
	out := getOutput()
	if extra != nil {
		out = io.MultiWriter(out, extra)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:       ParseLevel(logLevel),
		ReplaceAttr: renameLevels,
	})

	loggerMu.Lock()
	logger = slog.New(handler)
	loggerMu.Unlock()
}

// GetLogger returns the configured logger instance.
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	l := logger
	loggerMu.Unlock()
	if l == nil {
		InitLogger("info", nil)
		return GetLogger()
	}
	return l
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, mergeFields(fields...)...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	GetLogger().Info(fmt.Sprintf(format, args...))
}

// Debug logs a debug message (only shown when debug level is enabled).
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, mergeFields(fields...)...)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	GetLogger().Debug(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, mergeFields(fields...)...)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	GetLogger().Error(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, mergeFields(fields...)...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...interface{}) {
	GetLogger().Warn(fmt.Sprintf(format, args...))
}

// Success logs a per-file outcome. It sits above the error level so it is
// shown at every verbosity, and carries a success indicator.
func Success(msg string, fields ...Fields) {
	allFields := mergeFields(fields...)
	allFields = append(allFields, "status", "success")
	GetLogger().Log(context.Background(), LevelSuccess, msg, allFields...)
}

// Successf logs a formatted success message.
func Successf(format string, args ...interface{}) {
	GetLogger().Log(context.Background(), LevelSuccess, fmt.Sprintf(format, args...), "status", "success")
}

// Levels above error pass every level filter.
const (
	LevelSuccess = slog.Level(10)
	LevelNotice  = slog.Level(12)
)

// Notice is always emitted regardless of the configured level. It is used
// for run-level messages and per-file status (grace period, skips,
// transfer progress, end of run).
func Notice(msg string, fields ...Fields) {
	GetLogger().Log(context.Background(), LevelNotice, msg, mergeFields(fields...)...)
}

func renameLevels(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok {
		switch lvl {
		case LevelSuccess:
			a.Value = slog.StringValue("SUCCESS")
		case LevelNotice:
			a.Value = slog.StringValue("NOTICE")
		}
	}
	return a
}

// mergeFields merges multiple field maps into one slice of key-value pairs for slog.
func mergeFields(fields ...Fields) []interface{} {
	result := []interface{}{}
	for _, field := range fields {
		for k, v := range field {
			result = append(result, k, v)
		}
	}
	return result
}

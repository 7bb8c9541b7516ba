// Package logger provides the process-wide logger for docsync.
// Messages are written through zerolog; verbose mode lowers the level to
// debug so the sync pipeline can be followed step by step.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	console bool
	output  io.Writer = os.Stderr
	base              = build()
)

// build constructs the logger from the current settings (caller must hold lock
// or be in package initialisation).
func build() zerolog.Logger {
	w := output
	if console {
		w = zerolog.ConsoleWriter{Out: output, TimeFormat: time.TimeOnly}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables debug-level logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetConsole switches between human-readable console output and JSON lines.
func SetConsole(c bool) {
	mu.Lock()
	defer mu.Unlock()
	console = c
	base = build()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// L returns the structured logger for events that carry fields.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// Debug logs a message at debug level.
func Debug(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	L().Debug().Msgf("=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	L().Info().Msgf(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	L().Warn().Msgf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...any) {
	L().Error().Msgf(format, args...)
}

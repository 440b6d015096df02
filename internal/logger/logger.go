// Package logger provides logging for snowreport.
//
// Printf-style helpers (Debug, Info, Warn, Section) print to stderr only when
// verbose mode is enabled via the --verbose flag. New returns the structured
// slog logger that services use for pipeline events; it writes to the same
// output and drops debug records unless verbose mode is on.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	level   slog.LevelVar
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches structured loggers created afterwards to JSON lines.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = v
}

// SetOutput sets the output writer for all logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// sharedWriter forwards to the current output so loggers built before
// SetOutput still follow it.
type sharedWriter struct{}

func (sharedWriter) Write(p []byte) (int, error) {
	mu.RLock()
	defer mu.RUnlock()
	return output.Write(p)
}

// New returns a structured logger honouring the current settings.
func New() *slog.Logger {
	mu.RLock()
	asJSON := jsonOut
	mu.RUnlock()

	opts := &slog.HandlerOptions{Level: &level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(sharedWriter{}, opts))
	}
	return slog.New(slog.NewTextHandler(sharedWriter{}, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[WARN] "+format+"\n", args...)
	}
}

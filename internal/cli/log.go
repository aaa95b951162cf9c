// Package cli implements the modelscore command-line interface.
//
// The main command is score, which reads a URL manifest, fetches artifact
// metadata, and writes one NDJSON record per URL group to stdout. All
// human-facing status output goes to stderr so the NDJSON stream stays
// clean. The cache command manages the HTTP response cache.
//
// Logging is configured from the --verbose flag plus two environment
// variables: LOG_LEVEL (0 = silent, 1 = info, 2 = debug) and LOG_FILE
// (append log output to a file instead of stderr). Loggers travel through
// context.Context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamp formatting writing to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// loggerFromEnv builds the logger from LOG_LEVEL/LOG_FILE plus the
// verbose flag. Verbose wins over LOG_LEVEL; an unset LOG_LEVEL means
// silent, matching the batch-tool default of a clean stderr.
func loggerFromEnv(verbose bool) (*log.Logger, func(), error) {
	level := log.FatalLevel + 1 // silent
	switch os.Getenv("LOG_LEVEL") {
	case "1":
		level = log.InfoLevel
	case "2":
		level = log.DebugLevel
	}
	if verbose {
		level = log.DebugLevel
	}

	w := io.Writer(os.Stderr)
	cleanup := func() {}
	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		cleanup = func() { f.Close() }
	}
	return newLogger(w, level), cleanup, nil
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to the
// package default so commands always have a valid logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

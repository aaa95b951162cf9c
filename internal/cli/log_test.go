package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestLoggerFromEnvDefaultsSilent(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")

	logger, cleanup, err := loggerFromEnv(false)
	if err != nil {
		t.Fatalf("loggerFromEnv() error: %v", err)
	}
	defer cleanup()

	if logger.GetLevel() <= log.FatalLevel {
		t.Errorf("default level = %v, want above fatal (silent)", logger.GetLevel())
	}
}

func TestLoggerFromEnvLevels(t *testing.T) {
	tests := []struct {
		envLevel string
		verbose  bool
		want     log.Level
	}{
		{envLevel: "1", want: log.InfoLevel},
		{envLevel: "2", want: log.DebugLevel},
		{envLevel: "1", verbose: true, want: log.DebugLevel},
		{envLevel: "", verbose: true, want: log.DebugLevel},
	}

	for _, tt := range tests {
		t.Setenv("LOG_LEVEL", tt.envLevel)
		t.Setenv("LOG_FILE", "")

		logger, cleanup, err := loggerFromEnv(tt.verbose)
		if err != nil {
			t.Fatalf("loggerFromEnv() error: %v", err)
		}
		cleanup()

		if logger.GetLevel() != tt.want {
			t.Errorf("LOG_LEVEL=%q verbose=%v: level = %v, want %v", tt.envLevel, tt.verbose, logger.GetLevel(), tt.want)
		}
	}
}

func TestLoggerFromEnvLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	t.Setenv("LOG_LEVEL", "1")
	t.Setenv("LOG_FILE", path)

	logger, cleanup, err := loggerFromEnv(false)
	if err != nil {
		t.Fatalf("loggerFromEnv() error: %v", err)
	}
	logger.Info("hello from the test")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !bytes.Contains(data, []byte("hello from the test")) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestLoggerFromEnvBadLogFile(t *testing.T) {
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "missing", "dir", "run.log"))
	if _, _, err := loggerFromEnv(false); err == nil {
		t.Error("loggerFromEnv() should fail when the log file cannot be opened")
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext() should return the attached logger")
	}
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext() should fall back to a default logger")
	}
}

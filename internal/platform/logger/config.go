package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects the level, encoding and destination of the service logger.
// It is filled from the service configuration; the zero value logs JSON at info to stdout.
type LoggerConfig struct {
	Level      string
	Format     string
	OutputFile string
}

// ToZapLevel converts the string log level to zapcore.Level, defaulting to info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	case "panic":
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// Encoding returns the zap encoder name: console for "console" or "text", json otherwise.
func (c *LoggerConfig) Encoding() string {
	switch strings.ToLower(c.Format) {
	case "console", "text":
		return "console"
	default:
		return "json"
	}
}

// outputPaths returns the sinks for log entries and for the logger's own errors.
// A log file is mirrored to stdout; if its directory cannot be created, stdout alone is used.
func (c *LoggerConfig) outputPaths() (out, errOut []string) {
	switch c.OutputFile {
	case "", "stdout":
		return []string{"stdout"}, []string{"stderr"}
	case "stderr":
		return []string{"stderr"}, []string{"stderr"}
	}

	logDir := filepath.Dir(c.OutputFile)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create log directory '%s', defaulting to stdout: %v\n", logDir, err)
		return []string{"stdout"}, []string{"stderr"}
	}
	return []string{c.OutputFile, "stdout"}, []string{c.OutputFile, "stderr"}
}

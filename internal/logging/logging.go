// Package logging adds levels and an optional rotating file sink on top of
// the standard library logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is a log severity. Messages below the configured minimum are dropped.
type Level int32

// Severities in increasing order.
const (
	DEBUG Level = iota // verbose diagnostics
	INFO               // normal operation
	WARNING            // degraded but serving
	ERROR              // request or job failed
)

var levelNames = map[Level]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "INFO"
}

// ParseLevel maps a level name to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Options configures the process-wide logger.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Verbose    bool
}

var (
	minLevel atomic.Int32
	output   io.Writer = os.Stderr
)

// Setup points the standard logger at stderr and, if configured, a rotating
// file. It returns the writer so other components (gin) can share it.
func Setup(opts Options) (io.Writer, error) {
	var w io.Writer = os.Stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(os.Stderr, rotator)
	}

	flags := log.LstdFlags
	level := ParseLevel(opts.Level)
	if opts.Verbose {
		flags |= log.Lshortfile
		level = DEBUG
	}
	log.SetFlags(flags)
	log.SetOutput(w)
	minLevel.Store(int32(level))
	output = w
	return w, nil
}

// Writer returns the current log sink.
func Writer() io.Writer {
	return output
}

// SetLevel changes the minimum level at runtime.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// Enabled reports whether messages at l are emitted.
func Enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

func logf(l Level, format string, args ...any) {
	if !Enabled(l) {
		return
	}
	_ = log.Output(3, "["+l.String()+"] "+fmt.Sprintf(format, args...))
}

// Debugf logs at DEBUG.
func Debugf(format string, args ...any) { logf(DEBUG, format, args...) }

// Infof logs at INFO.
func Infof(format string, args ...any) { logf(INFO, format, args...) }

// Warnf logs at WARNING.
func Warnf(format string, args ...any) { logf(WARNING, format, args...) }

// Errorf logs at ERROR.
func Errorf(format string, args ...any) { logf(ERROR, format, args...) }

func init() {
	minLevel.Store(int32(INFO))
}

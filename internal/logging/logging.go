// Package logging configures the global slog logger for cliptask. Logs are
// written to stderr; stdout belongs to the task list.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a config value to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text", "tint", "human":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want auto|text|json)", s)
	}
}

// ParseLevel converts a config value such as "debug" or "warn" to a level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
	return l, nil
}

// DefaultLevel is the level used when none is configured: debug for a
// foreground (--no-background) run, info otherwise.
func DefaultLevel(foreground bool) slog.Level {
	if foreground {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Options configures a logger.
type Options struct {
	Format Format
	Level  slog.Level
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New builds a logger. FormatAuto picks tinter on a terminal and JSON
// everywhere else.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	if opts.Format == FormatText || (opts.Format == FormatAuto && IsTTY(w)) {
		return slog.New(tinter.NewHandler(w, &tinter.Options{
			Level:      opts.Level,
			TimeFormat: "15:04:05.000",
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: opts.Level,
	}))
}

// Setup installs a logger built from opts as the slog default. Call once
// after flag/viper parsing.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}

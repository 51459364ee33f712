// Package logging builds the structured slog loggers used across ferrite.
//
// Level and format come from the config file or from FERRITE_LOG_LEVEL and
// FERRITE_LOG_FORMAT. Output always goes to stderr so stdout stays free for
// command results and the MCP stdio transport.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures a logger.
type Options struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to os.Stderr
	Source string    // component name, attached as the "source" attribute
}

// ParseLevel maps debug, info, warn and error to slog levels. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// OptionsFor returns options for source with the given level and format
// names, then applies any FERRITE_LOG_LEVEL and FERRITE_LOG_FORMAT overrides.
func OptionsFor(source, level, format string) Options {
	if env := os.Getenv("FERRITE_LOG_LEVEL"); env != "" {
		level = env
	}
	if env := os.Getenv("FERRITE_LOG_FORMAT"); env != "" {
		format = env
	}
	return Options{
		Level:  ParseLevel(level),
		Format: strings.ToLower(format),
		Output: os.Stderr,
		Source: source,
	}
}

// New creates a logger from opts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler).With("source", opts.Source)
}

// Default returns an info-level text logger for source, honoring the
// environment overrides.
func Default(source string) *slog.Logger {
	return New(OptionsFor(source, "info", "text"))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

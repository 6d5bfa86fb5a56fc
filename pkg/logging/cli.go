package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

// CLIHandler is a custom slog.Handler for terminal output: single line per
// record, colored by level, attributes appended as key=value pairs.
type CLIHandler struct {
	writer io.Writer
	level  slog.Level
	prefix string
	attrs  []slog.Attr
}

func NewCLIHandler(w io.Writer, level slog.Level) *CLIHandler {
	return &CLIHandler{
		writer: w,
		level:  level,
	}
}

func (h *CLIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *CLIHandler) Handle(_ context.Context, r slog.Record) error {
	msg := r.Message
	if h.prefix != "" {
		msg = "[" + h.prefix + "] " + msg
	}

	pairs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		pairs = append(pairs, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		pairs = append(pairs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})
	if len(pairs) > 0 {
		msg = msg + ": " + strings.Join(pairs, " ")
	}

	switch {
	case r.Level >= slog.LevelError:
		msg = colorRed + msg + colorReset
	case r.Level >= slog.LevelWarn:
		msg = colorYellow + msg + colorReset
	default:
		msg = colorGreen + msg + colorReset
	}

	_, err := fmt.Fprintln(h.writer, msg)
	return err
}

func (h *CLIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &CLIHandler{
		writer: h.writer,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *CLIHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &CLIHandler{
		writer: h.writer,
		level:  h.level,
		prefix: name,
		attrs:  h.attrs,
	}
}

func NewCLILogger(level string) *slog.Logger {
	return slog.New(NewCLIHandler(os.Stderr, ParseLogLevel(level)))
}

// SetDefaultCLILogger installs the CLI handler as the process default.
func SetDefaultCLILogger(level string) {
	slog.SetDefault(NewCLILogger(level))
}

// SetDefaultServerLogger installs a plain text slog handler, better suited
// for server logs that get scraped rather than read in a terminal.
func SetDefaultServerLogger(level string) {
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLogLevel(level)})
	slog.SetDefault(slog.New(h))
}

// ParseLogLevel converts a string log level to slog.Level.
// Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

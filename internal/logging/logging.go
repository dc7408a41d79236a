// Package logging provides structured logging configuration using slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a --log-format value. Empty input means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid --log-format %q (expected text|json)", s)
	}
}

// Configure installs the global slog logger. With debug the level is Debug,
// otherwise Info. Output goes to w, or os.Stderr when w is nil.
func Configure(debug bool, format Format, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// Setup configures the global slog logger with text output.
func Setup(debug bool, w io.Writer) {
	Configure(debug, FormatText, w)
}

// SetupJSON configures the global slog logger with JSON output.
func SetupJSON(debug bool, w io.Writer) {
	Configure(debug, FormatJSON, w)
}

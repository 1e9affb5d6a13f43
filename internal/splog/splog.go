// Package splog provides structured logging handler construction for use
// with [log/slog], adapted from the teacher repo's log package and kept
// self-consistent: one [Level]/[Format] pair, one handler constructor, and
// one CLI flag [Config].
package splog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level is a log severity, parsed from a CLI flag or config value.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// Format is a log output encoding.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt (key=value) format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs logs in slog's default human-readable format.
	FormatText Format = "text"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// ParseLevel parses a log level string, case-insensitively. "warning" is
// accepted as an alias for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", ErrUnknownLogLevel
}

// ParseFormat parses a log format string, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if slices.Contains(GetAllFormats(), f) {
		return f, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllFormats returns every recognized [Format] value, in a stable order.
func GetAllFormats() []Format {
	return []Format{FormatJSON, FormatLogfmt, FormatText}
}

// GetAllLevelStrings returns every recognized level string, for flag help
// text and shell completion.
func GetAllLevelStrings() []string {
	return []string{string(LevelError), string(LevelWarn), string(LevelInfo), string(LevelDebug)}
}

// GetAllFormatStrings returns every recognized format string, for flag help
// text and shell completion.
func GetAllFormatStrings() []string {
	formats := GetAllFormats()
	out := make([]string, len(formats))

	for i, f := range formats {
		out[i] = string(f)
	}

	return out
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

// NewHandler creates a [slog.Handler] writing to w at the given level and
// format.
func NewHandler(w io.Writer, lvl Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: lvl.slogLevel()}

	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt, FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// NewHandlerFromStrings parses levelStr and formatStr and creates a
// [slog.Handler] writing to w.
func NewHandlerFromStrings(w io.Writer, levelStr, formatStr string) (slog.Handler, error) {
	lvl, err := ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	format, err := ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, lvl, format), nil
}

// AutoFormat picks [FormatText] when w is a terminal and [FormatJSON]
// otherwise, so piped or redirected output defaults to machine-readable
// logs without a flag.
func AutoFormat(w io.Writer) Format {
	f, ok := w.(*os.File)
	if !ok {
		return FormatJSON
	}

	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return FormatText
	}

	return FormatJSON
}

// LogSplitError logs a [*splitter.Error]-shaped failure (kind, option name,
// and message) as structured attributes, without importing the splitter
// package directly — callers pass the three fields they already have,
// keeping this package dependency-free of the engine it instruments.
func LogSplitError(logger *slog.Logger, kind fmt.Stringer, optionName, message string) {
	attrs := []slog.Attr{slog.String("kind", kind.String())}
	if optionName != "" {
		attrs = append(attrs, slog.String("option", optionName))
	}

	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
}
